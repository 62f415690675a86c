package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOffice = `{
	"taxId": "37335118000180",
	"founded": "2024-03-15",
	"company": {"name": "56.190.792 YAGO CID GARCIA", "simei": {"optant": true}},
	"address": {"state": "SP", "city": "São Paulo"},
	"phones": [{"area": "11", "number": "999999999"}],
	"emails": [{"address": "yago@example.com"}]
}`

func TestRecord_Accessors(t *testing.T) {
	rec := NewRecord([]byte(sampleOffice))

	assert.Equal(t, "37335118000180", rec.TaxID())
	assert.Equal(t, "56.190.792 YAGO CID GARCIA", rec.CompanyName())
	assert.Equal(t, "2024-03-15", rec.Founded())
	assert.Equal(t, "SP", rec.State())
	assert.Equal(t, "São Paulo", rec.Get("address.city").String())
}

func TestRecord_MissingFields(t *testing.T) {
	rec := NewRecord([]byte(`{}`))

	assert.Empty(t, rec.TaxID())
	assert.Empty(t, rec.CompanyName())
	assert.Empty(t, rec.Founded())
	assert.Empty(t, rec.State())
}

func TestRecord_InvalidJSON(t *testing.T) {
	rec := NewRecord([]byte(`{not json`))

	assert.Empty(t, rec.CompanyName())
	assert.False(t, rec.Get("taxId").Exists())
}

func TestRecord_ZeroValue(t *testing.T) {
	var rec Record
	assert.False(t, rec.Get("company.name").Exists())

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestRecord_NonStringFieldsYieldEmpty(t *testing.T) {
	rec := NewRecord([]byte(`{"company": {"name": {"first": "x"}}, "taxId": 37335118000180}`))

	assert.Empty(t, rec.CompanyName())
	assert.Equal(t, "37335118000180", rec.TaxID())
}

func TestRecord_JSONRoundTrip(t *testing.T) {
	var payload struct {
		Records []Record `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"records": [`+sampleOffice+`, {"taxId": "1"}]}`), &payload))
	require.Len(t, payload.Records, 2)
	assert.Equal(t, "SP", payload.Records[0].State())
	assert.Equal(t, "1", payload.Records[1].TaxID())

	out, err := json.Marshal(payload.Records[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"taxId": "1"}`, string(out))
}

func TestTruthy(t *testing.T) {
	rec := NewRecord([]byte(`{"s": "x", "e": "", "n": 5, "z": 0, "t": true, "f": false, "o": {}, "a": [], "nil": null}`))

	tests := []struct {
		path string
		want bool
	}{
		{"s", true},
		{"e", false},
		{"n", true},
		{"z", false},
		{"t", true},
		{"f", false},
		{"o", true},
		{"a", true},
		{"nil", false},
		{"missing", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Truthy(rec.Get(tt.path)))
		})
	}
}

func TestRecord_FirstTruthy(t *testing.T) {
	rec := NewRecord([]byte(`{"company": {"phone": ""}, "phone": "1133334444", "phone_alt": "x"}`))

	v, ok := rec.FirstTruthy("company.phone", "phone", "phone_alt")
	require.True(t, ok)
	assert.Equal(t, "1133334444", v.String())

	_, ok = rec.FirstTruthy("company.phone", "nope")
	assert.False(t, ok)
}

func TestRecord_First(t *testing.T) {
	rec := NewRecord([]byte(`{"phones": ["a", "b"], "empty": [], "scalar": "x"}`))

	v, ok := rec.First("phones")
	require.True(t, ok)
	assert.Equal(t, "a", v.String())

	_, ok = rec.First("empty")
	assert.False(t, ok)

	_, ok = rec.First("scalar")
	assert.False(t, ok)

	_, ok = rec.First("missing")
	assert.False(t, ok)
}
