package export

import (
	"regexp"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/cnpj-leads/internal/contact"
	"github.com/sells-group/cnpj-leads/internal/model"
)

// ManychatContact is one row of the Manychat bulk-import CSV.
type ManychatContact struct {
	WhatsappID string `csv:"Whatsapp Id"`
	FirstName  string `csv:"First Name"`
	FullName   string `csv:"Full Name"`
}

var (
	leadingIDChars = regexp.MustCompile(`^[\d\s./-]+`)
	digitsAndDots  = regexp.MustCompile(`[\d.]`)
)

// FirstName derives a contact first name from a legal name: the leading
// CNPJ-root characters are dropped and the first word is kept.
func FirstName(legalName string) string {
	namePart := strings.TrimSpace(leadingIDChars.ReplaceAllString(legalName, ""))
	first, _, _ := strings.Cut(namePart, " ")
	first = strings.TrimSpace(digitsAndDots.ReplaceAllString(first, ""))
	if first == "" {
		return model.NotAvailable
	}
	return first
}

// ManychatContacts builds the contact rows of records whose phone resolves
// to international form. When some records carry a micro-entrepreneur name
// only those are considered.
func ManychatContacts(records []model.Record) ([]ManychatContact, error) {
	candidates := model.FilterMEINames(records)
	if len(candidates) == 0 {
		candidates = records
	}
	if len(candidates) == 0 {
		return nil, ErrNoRecords
	}

	var contacts []ManychatContact
	for _, r := range candidates {
		phone := contact.ExtractPhoneRaw(r)
		if phone == model.NotAvailable || !strings.HasPrefix(phone, "+55") {
			continue
		}

		name := r.CompanyName()
		if name == "" {
			name = model.NotAvailable
		}

		contacts = append(contacts, ManychatContact{
			WhatsappID: phone,
			FirstName:  FirstName(name),
			FullName:   strings.TrimSpace(name),
		})
	}

	if len(contacts) == 0 {
		return nil, eris.Wrap(ErrNothingToExport, "no contact with a +55 phone")
	}
	return contacts, nil
}

// MarshalManychatCSV encodes contacts with the Manychat header.
func MarshalManychatCSV(contacts []ManychatContact) ([]byte, error) {
	b, err := csvutil.Marshal(contacts)
	if err != nil {
		return nil, eris.Wrap(err, "export: marshal manychat csv")
	}
	return b, nil
}
