//go:build !integration

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/cnpj-leads/internal/export"
	"github.com/sells-group/cnpj-leads/internal/model"
)

func sampleRecords() []model.Record {
	return []model.Record{
		model.NewRecord([]byte(`{"taxId": "37335118000180", "company": {"name": "56.190.792 YAGO CID GARCIA"},
			"address": {"state": "SP"}, "phones": [{"area": "11", "number": "999999999"}]}`)),
		model.NewRecord([]byte(`{"taxId": "11222333000181", "company": {"name": "ACME LTDA"}, "phone": "40787834"}`)),
	}
}

func TestSelectedKinds(t *testing.T) {
	cmd := &cobra.Command{Use: "export"}
	addExportFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--xlsx", "--emails"}))

	assert.Equal(t, []export.Kind{export.KindEmails, export.KindXLSX}, selectedKinds(cmd))
}

func TestWriteExports(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	var log bytes.Buffer

	err := writeExports(&log, dir, []export.Kind{export.KindPhones, export.KindEmails, export.KindXLSX},
		sampleRecords(), export.Options{})
	require.NoError(t, err)

	phones, err := os.ReadFile(filepath.Join(dir, "telefones_exportados.txt"))
	require.NoError(t, err)
	assert.Equal(t, "(11) 99999-9999\n4078-7834", string(phones))

	_, err = os.Stat(filepath.Join(dir, "empresas.xlsx"))
	assert.NoError(t, err)

	// Neither record carries an email.
	_, err = os.Stat(filepath.Join(dir, "emails_exportados.txt"))
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, log.String(), "No email found to export.")
	assert.Contains(t, log.String(), "Wrote ")
}

func TestWriteExports_NoRecords(t *testing.T) {
	dir := t.TempDir()
	var log bytes.Buffer

	require.NoError(t, writeExports(&log, dir, export.Kinds, nil, export.Options{}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Contains(t, log.String(), "No results to export.")
}

func TestWriteExports_Encoding(t *testing.T) {
	dir := t.TempDir()
	records := []model.Record{model.NewRecord([]byte(`{"company": {"name": "12.345.678 JOÃO"}, "address": {"state": "SP"}, "phone": "33334444"}`))}

	require.NoError(t, writeExports(&bytes.Buffer{}, dir, []export.Kind{export.KindManychat}, records,
		export.Options{Charset: "windows-1252"}))

	b, err := os.ReadFile(filepath.Join(dir, "manychat_contacts_filtered.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "JO\xc3O")
}

func TestSaveAndLoadRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.json")
	require.NoError(t, saveRecords(path, sampleRecords()))

	got, err := loadRecords(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ACME LTDA", got[1].CompanyName())
}

func TestLoadRecords_Shapes(t *testing.T) {
	dir := t.TempDir()

	bare := filepath.Join(dir, "bare.json")
	require.NoError(t, os.WriteFile(bare, []byte(` [{"taxId": "1"}, {"taxId": "2"}]`), 0o644))
	got, err := loadRecords(bare)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	page := filepath.Join(dir, "page.json")
	require.NoError(t, os.WriteFile(page, []byte(`{"next": "abc", "count": 1, "records": [{"taxId": "9"}]}`), 0o644))
	got, err = loadRecords(page)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "9", got[0].TaxID())

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"records": [`), 0o644))
	_, err = loadRecords(broken)
	assert.Error(t, err)

	_, err = loadRecords(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
