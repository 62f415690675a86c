package contact

import (
	"strings"

	emailaddress "github.com/mcnijman/go-emailaddress"
	"github.com/tidwall/gjson"

	"github.com/sells-group/cnpj-leads/internal/model"
)

// emailSource picks a raw email value from a record.
type emailSource func(rec model.Record) (gjson.Result, bool)

// emailSources is the extraction precedence: the first set value among the
// company email, the first element of the emails list and the top-level
// email; then a second pass over the emails list alone.
var emailSources = []emailSource{
	func(rec model.Record) (gjson.Result, bool) {
		return rec.FirstTruthy("company.email", "emails.0", "email")
	},
	func(rec model.Record) (gjson.Result, bool) {
		return rec.First("emails")
	},
}

// ExtractEmail returns the email of a record, or model.NotAvailable. Each
// candidate may be a plain string or an object with an address or value
// field.
func ExtractEmail(rec model.Record) string {
	for _, source := range emailSources {
		v, ok := source(rec)
		if !ok {
			continue
		}
		if email, ok := emailFromValue(v); ok {
			return email
		}
	}
	return model.NotAvailable
}

func emailFromValue(v gjson.Result) (string, bool) {
	if v.IsObject() {
		if s := firstText(v, "address", "value"); s != "" {
			return s, true
		}
		return "", false
	}
	if v.Type != gjson.String || strings.TrimSpace(v.Str) == "" {
		return "", false
	}
	return v.Str, true
}

// ValidEmail reports whether s parses as an email address.
func ValidEmail(s string) bool {
	if s == model.NotAvailable {
		return false
	}
	_, err := emailaddress.Parse(strings.TrimSpace(s))
	return err == nil
}
