package model

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"
)

// NotAvailable is the sentinel every extractor returns when a field is
// missing or cannot be interpreted.
const NotAvailable = "N/A"

// Record is one registry entry as returned by the API. Only the raw JSON is
// kept; every field is optional and may be a string, an array or an object,
// so all access goes through loosely typed paths.
type Record struct {
	raw []byte
}

// NewRecord wraps raw JSON. Invalid JSON yields a record whose every path is
// absent.
func NewRecord(raw []byte) Record {
	if !gjson.ValidBytes(raw) {
		return Record{}
	}
	return Record{raw: bytes.Clone(raw)}
}

// UnmarshalJSON keeps the raw bytes of the entry.
func (r *Record) UnmarshalJSON(b []byte) error {
	r.raw = bytes.Clone(b)
	return nil
}

// MarshalJSON writes the entry back unchanged.
func (r Record) MarshalJSON() ([]byte, error) {
	if len(r.raw) == 0 {
		return []byte("null"), nil
	}
	return r.raw, nil
}

// Raw returns the underlying JSON.
func (r Record) Raw() json.RawMessage {
	return json.RawMessage(r.raw)
}

// Get resolves a gjson path such as "company.name" or "phones.0".
func (r Record) Get(path string) gjson.Result {
	if len(r.raw) == 0 {
		return gjson.Result{}
	}
	return gjson.GetBytes(r.raw, path)
}

// TaxID returns the CNPJ as sent by the API, or "".
func (r Record) TaxID() string {
	return Text(r.Get("taxId"))
}

// CompanyName returns the legal name (razão social), or "".
func (r Record) CompanyName() string {
	return Text(r.Get("company.name"))
}

// Founded returns the founding date as sent by the API, or "".
func (r Record) Founded() string {
	return Text(r.Get("founded"))
}

// State returns the two-letter federative unit of the address, or "".
func (r Record) State() string {
	return Text(r.Get("address.state"))
}

// Text returns the value as a plain string when it is a JSON string or
// number; anything else yields "".
func Text(v gjson.Result) string {
	switch v.Type {
	case gjson.String, gjson.Number:
		return v.String()
	default:
		return ""
	}
}

// Truthy mirrors the loose "is this field set" test used for field
// precedence: non-empty strings, non-zero numbers, true, arrays and objects.
func Truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	case gjson.True, gjson.JSON:
		return true
	default:
		return false
	}
}

// FirstTruthy returns the first value among paths that is set.
func (r Record) FirstTruthy(paths ...string) (gjson.Result, bool) {
	for _, p := range paths {
		if v := r.Get(p); Truthy(v) {
			return v, true
		}
	}
	return gjson.Result{}, false
}

// First returns the first element of the array at path when the value is a
// non-empty array.
func (r Record) First(path string) (gjson.Result, bool) {
	v := r.Get(path)
	if !v.IsArray() {
		return gjson.Result{}, false
	}
	items := v.Array()
	if len(items) == 0 {
		return gjson.Result{}, false
	}
	return items[0], true
}
