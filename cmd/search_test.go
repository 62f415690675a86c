//go:build !integration

package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/cnpj-leads/internal/export"
	"github.com/sells-group/cnpj-leads/internal/model"
)

func newSearchFlagsCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "search"}
	addSearchFlags(cmd)
	addExportFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestSearchQuery_Defaults(t *testing.T) {
	q, err := searchQuery(newSearchFlagsCmd(t))
	require.NoError(t, err)

	assert.True(t, q.From.IsZero())
	assert.True(t, q.To.IsZero())
	assert.Zero(t, q.Limit)
	assert.Nil(t, q.Optant, "an unset --optant keeps the configured default")
}

func TestSearchQuery_Flags(t *testing.T) {
	q, err := searchQuery(newSearchFlagsCmd(t,
		"--from", "2025-01-01", "--to", "2025-01-31", "--limit", "25", "--pages", "3", "--optant=false"))
	require.NoError(t, err)

	assert.Equal(t, "2025-01-01", q.From.Format("2006-01-02"))
	assert.Equal(t, "2025-01-31", q.To.Format("2006-01-02"))
	assert.Equal(t, 25, q.Limit)
	assert.Equal(t, 3, q.Pages)
	require.NotNil(t, q.Optant)
	assert.False(t, *q.Optant)
}

func TestSearchQuery_BadDate(t *testing.T) {
	_, err := searchQuery(newSearchFlagsCmd(t, "--from", "15/03/2025"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--from")
}

func TestFormatResults(t *testing.T) {
	rows := []export.Row{
		{
			CNPJ:    "37.335.118/0001-80",
			Name:    "56.190.792 YAGO CID GARCIA",
			Founded: "15/03/2024",
			Email:   "yago@example.com",
			Phone:   "(11) 99999-9999",
		},
		{
			CNPJ:    model.NotAvailable,
			Name:    strings.Repeat("CONSTRUTORA ", 6),
			Founded: model.NotAvailable,
			Email:   model.NotAvailable,
			Phone:   model.NotAvailable,
		},
	}

	var buf bytes.Buffer
	formatResults(&buf, rows)

	output := buf.String()
	assert.Contains(t, output, "RAZÃO SOCIAL")
	assert.Contains(t, output, "TELEFONE")
	assert.Contains(t, output, "37.335.118/0001-80")
	assert.Contains(t, output, "(11) 99999-9999")
	assert.Contains(t, output, "15/03/2024")
	assert.Contains(t, output, "...")
	assert.NotContains(t, output, strings.Repeat("CONSTRUTORA ", 6))
}

func TestSearchCommand_EndToEnd(t *testing.T) {
	var gotAuth, gotOptant string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotOptant = r.URL.Query().Get("company.simei.optant.eq")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count": 1, "records": [{"taxId": "37335118000180", "founded": "2024-03-15",
			"company": {"name": "56.190.792 YAGO CID GARCIA", "email": "yago@example.com"},
			"address": {"state": "SP"}, "phones": [{"area": "11", "number": "999999999"}]}]}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	t.Setenv("CNPJ_LEADS_CNPJA_KEY", "test-key")
	t.Setenv("CNPJ_LEADS_CNPJA_BASE_URL", srv.URL)
	t.Setenv("CNPJ_LEADS_CNPJA_REQUESTS_PER_MINUTE", "0")
	t.Setenv("CNPJ_LEADS_LOG_LEVEL", "error")

	rawPath := filepath.Join(dir, "raw.json")
	rootCmd.SetArgs([]string{"search", "--from", "2024-03-01", "--to", "2024-03-31", "--optant=false",
		"--emails", "--manychat", "--out-dir", dir, "--raw-out", rawPath})
	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, "test-key", gotAuth)
	assert.Equal(t, "false", gotOptant)

	emails, err := os.ReadFile(filepath.Join(dir, export.KindEmails.FileName()))
	require.NoError(t, err)
	assert.Equal(t, "yago@example.com", string(emails))

	csv, err := os.ReadFile(filepath.Join(dir, export.KindManychat.FileName()))
	require.NoError(t, err)
	assert.Contains(t, string(csv), "+5511999999999,YAGO,56.190.792 YAGO CID GARCIA")

	saved, err := loadRecords(rawPath)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "37335118000180", saved[0].TaxID())

	_, err = os.Stat(filepath.Join(dir, export.KindPhones.FileName()))
	assert.True(t, os.IsNotExist(err), "unselected kinds are not written")
}
