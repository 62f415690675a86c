package model

import (
	"regexp"
	"strings"
	"time"
)

var nonDigit = regexp.MustCompile(`\D`)

// Digits strips every non-digit character.
func Digits(s string) string {
	return nonDigit.ReplaceAllString(s, "")
}

// FormatCNPJ applies the XX.XXX.XXX/XXXX-XX mask to a 14-digit tax id.
// Anything else is returned unchanged.
func FormatCNPJ(cnpj string) string {
	d := Digits(cnpj)
	if len(d) != 14 {
		return cnpj
	}
	return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:14]
}

var foundedLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// FormatFounded renders a founding date as DD/MM/YYYY. Empty input yields
// NotAvailable; unparseable input is returned unchanged.
func FormatFounded(founded string) string {
	s := strings.TrimSpace(founded)
	if s == "" {
		return NotAvailable
	}
	for _, layout := range foundedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return founded
}

// meiNamePrefix matches the CNPJ root that individual micro-entrepreneur
// registrations carry in front of the owner's name, e.g.
// "56.190.792 YAGO CID GARCIA".
var meiNamePrefix = regexp.MustCompile(`^\d{2}\.\d{3}\.\d{3}\s`)

// IsMEIName reports whether a legal name starts with the CNPJ-root prefix.
func IsMEIName(name string) bool {
	return meiNamePrefix.MatchString(name)
}

// FilterMEINames keeps the records whose company name carries the CNPJ-root
// prefix.
func FilterMEINames(records []Record) []Record {
	var out []Record
	for _, r := range records {
		if IsMEIName(r.CompanyName()) {
			out = append(out, r)
		}
	}
	return out
}
