package contact

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/sells-group/cnpj-leads/internal/model"
)

// DefaultCountryCode is assumed when a phone value does not carry one.
const DefaultCountryCode = "55"

// Phone is a normalized phone number.
type Phone struct {
	// Display is the human-readable form, or the original input when no
	// known pattern matched.
	Display string
	// Digits holds the normalized digits when Display came from a known
	// pattern: area code plus local number for 10 and 11 digits, local
	// number only for 8 and 9.
	Digits string
}

// AreaCode returns the area code carried in Digits, or "".
func (p Phone) AreaCode() string {
	if len(p.Digits) == 10 || len(p.Digits) == 11 {
		return p.Digits[:2]
	}
	return ""
}

// FormatPhone reformats a raw phone value for display. countryCode defaults
// to "55" and areaCode may be empty. Input matching no known length is
// returned unchanged.
func FormatPhone(raw, countryCode, areaCode string) string {
	return normalizePhone(raw, countryCode, areaCode).Display
}

func normalizePhone(raw, countryCode, areaCode string) Phone {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}

	digits := model.Digits(raw)
	digits = strings.TrimPrefix(digits, countryCode)

	if area := model.Digits(areaCode); area != "" {
		digits = strings.TrimPrefix(digits, area)
		if len(digits) == 8 || len(digits) == 9 {
			digits = area + digits
		}
	}

	var display string
	switch len(digits) {
	case 11:
		display = "(" + digits[:2] + ") " + digits[2:7] + "-" + digits[7:]
	case 10:
		display = "(" + digits[:2] + ") " + digits[2:6] + "-" + digits[6:]
	case 9:
		display = digits[:5] + "-" + digits[5:]
	case 8:
		display = digits[:4] + "-" + digits[4:]
	default:
		return Phone{Display: raw}
	}
	return Phone{Display: display, Digits: digits}
}

// phoneSource picks a raw phone value from a record.
type phoneSource func(rec model.Record) (gjson.Result, bool)

// phoneSources is the extraction precedence: the first element of the
// phones list, else the first set value among the single-value fields; then
// a second pass over the phones list alone.
var phoneSources = []phoneSource{
	func(rec model.Record) (gjson.Result, bool) {
		if v, ok := rec.First("phones"); ok {
			return v, true
		}
		return rec.FirstTruthy("company.phone", "phone", "phone_alt")
	},
	func(rec model.Record) (gjson.Result, bool) {
		return rec.First("phones")
	},
}

// ResolvePhone runs the extraction strategies in order and returns the
// first phone they produce.
func ResolvePhone(rec model.Record) (Phone, bool) {
	inferred, _ := AreaCodeForState(rec.State())

	for _, source := range phoneSources {
		v, ok := source(rec)
		if !ok {
			continue
		}
		if p, ok := phoneFromValue(v, inferred); ok {
			return p, true
		}
	}
	return Phone{}, false
}

// phoneFromValue interprets a plain or structured phone value. A structured
// value's own area and country codes win over the inferred area code.
func phoneFromValue(v gjson.Result, inferredArea string) (Phone, bool) {
	if v.IsObject() {
		number := firstText(v, "number", "value")
		if number == "" {
			return Phone{}, false
		}
		area := model.Text(v.Get("area"))
		if area == "" {
			area = inferredArea
		}
		country := model.Text(v.Get("countryCode"))
		return normalizePhone(number, country, area), true
	}

	s := model.Text(v)
	if strings.TrimSpace(s) == "" {
		return Phone{}, false
	}
	return normalizePhone(s, DefaultCountryCode, inferredArea), true
}

// ExtractPhone returns the display-formatted phone of a record, or
// model.NotAvailable.
func ExtractPhone(rec model.Record) string {
	p, ok := ResolvePhone(rec)
	if !ok || p.Display == "" {
		return model.NotAvailable
	}
	return p.Display
}

// ExtractPhoneRaw returns the phone in strict international form
// ("+55" followed by 10 or 11 digits), or model.NotAvailable. The area code
// comes from the resolved phone itself.
func ExtractPhoneRaw(rec model.Record) string {
	p, ok := ResolvePhone(rec)
	if !ok {
		return model.NotAvailable
	}

	var raw string
	if p.AreaCode() != "" {
		raw = "+" + DefaultCountryCode + p.Digits
	} else {
		raw = keepDialChars(p.Display)
		if !strings.HasPrefix(raw, "+"+DefaultCountryCode) {
			return model.NotAvailable
		}
	}

	if len(raw) == 13 || len(raw) == 14 {
		return raw
	}
	return model.NotAvailable
}

func keepDialChars(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '+' || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// firstText returns the first set plain value among keys of an object.
func firstText(obj gjson.Result, keys ...string) string {
	for _, k := range keys {
		v := obj.Get(k)
		if !model.Truthy(v) {
			continue
		}
		if s := model.Text(v); s != "" {
			return s
		}
	}
	return ""
}
