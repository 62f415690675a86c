// Package contact extracts and normalizes the email and phone number of a
// registry record.
package contact

import "strings"

// areaCodes maps each federative unit to the area code of its capital.
var areaCodes = map[string]string{
	"AC": "68", "AL": "82", "AP": "96", "AM": "92", "BA": "71", "CE": "85", "DF": "61",
	"ES": "27", "GO": "62", "MA": "98", "MT": "65", "MS": "67", "MG": "31", "PA": "91",
	"PB": "83", "PR": "41", "PE": "81", "PI": "86", "RJ": "21", "RN": "84", "RS": "51",
	"RO": "69", "RR": "95", "SC": "48", "SP": "11", "SE": "79", "TO": "63",
}

// AreaCodeForState returns the area code for a two-letter state code,
// case-insensitively. ok is false for unknown codes.
func AreaCodeForState(state string) (string, bool) {
	code, ok := areaCodes[strings.ToUpper(strings.TrimSpace(state))]
	return code, ok
}
