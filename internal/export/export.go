// Package export builds the downloadable artifacts of a search: email and
// phone lists, the Manychat contact CSV and the full-table spreadsheet.
package export

import (
	"bytes"
	"errors"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/cnpj-leads/internal/contact"
	"github.com/sells-group/cnpj-leads/internal/model"
)

var (
	// ErrNoRecords is returned when there is no search result to export.
	ErrNoRecords = eris.New("no results to export")
	// ErrNothingToExport is returned when no record yields the requested field.
	ErrNothingToExport = eris.New("nothing eligible to export")
)

// Kind names an export artifact.
type Kind string

const (
	KindEmails   Kind = "emails"
	KindPhones   Kind = "phones"
	KindManychat Kind = "manychat"
	KindXLSX     Kind = "xlsx"
)

// Kinds lists every export artifact.
var Kinds = []Kind{KindEmails, KindPhones, KindManychat, KindXLSX}

// ParseKind validates an export kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", eris.Errorf("export: unknown kind %q", s)
}

// FileName is the default file name of the artifact.
func (k Kind) FileName() string {
	switch k {
	case KindEmails:
		return "emails_exportados.txt"
	case KindPhones:
		return "telefones_exportados.txt"
	case KindManychat:
		return "manychat_contacts_filtered.csv"
	case KindXLSX:
		return "empresas.xlsx"
	default:
		return string(k)
	}
}

// ContentType is the MIME type of the artifact for a given charset.
func (k Kind) ContentType(charset string) string {
	if charset == "" {
		charset = "utf-8"
	}
	switch k {
	case KindManychat:
		return "text/csv;charset=" + charset
	case KindXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/plain;charset=" + charset
	}
}

// Options tunes artifact generation.
type Options struct {
	// ValidEmailsOnly drops emails that do not parse as addresses.
	ValidEmailsOnly bool
	// Charset of text artifacts; empty means UTF-8.
	Charset string
}

// Build renders the artifact of the given kind.
func Build(kind Kind, records []model.Record, opts Options) ([]byte, error) {
	var (
		out []byte
		err error
	)

	switch kind {
	case KindEmails:
		var lines []string
		if lines, err = Emails(records, opts.ValidEmailsOnly); err == nil {
			out = joinLines(lines)
		}
	case KindPhones:
		var lines []string
		if lines, err = Phones(records); err == nil {
			out = joinLines(lines)
		}
	case KindManychat:
		var contacts []ManychatContact
		if contacts, err = ManychatContacts(records); err == nil {
			out, err = MarshalManychatCSV(contacts)
		}
	case KindXLSX:
		if len(records) == 0 {
			return nil, ErrNoRecords
		}
		var buf bytes.Buffer
		if err = WriteXLSX(&buf, BuildRows(records)); err == nil {
			out = buf.Bytes()
		}
		return out, err
	default:
		return nil, eris.Errorf("export: unknown kind %q", kind)
	}
	if err != nil {
		return nil, err
	}

	return EncodeText(out, opts.Charset)
}

// Emails returns the extracted email of every record that has one.
func Emails(records []model.Record, validOnly bool) ([]string, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	var emails []string
	for _, r := range records {
		email := contact.ExtractEmail(r)
		if email == model.NotAvailable {
			continue
		}
		if validOnly && !contact.ValidEmail(email) {
			continue
		}
		emails = append(emails, email)
	}

	if len(emails) == 0 {
		return nil, eris.Wrap(ErrNothingToExport, "no email found")
	}
	return emails, nil
}

// Phones returns the display-formatted phone of every record that has one.
func Phones(records []model.Record) ([]string, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	var phones []string
	for _, r := range records {
		if phone := contact.ExtractPhone(r); phone != model.NotAvailable {
			phones = append(phones, phone)
		}
	}

	if len(phones) == 0 {
		return nil, eris.Wrap(ErrNothingToExport, "no phone found")
	}
	return phones, nil
}

func joinLines(lines []string) []byte {
	return []byte(strings.Join(lines, "\n"))
}

// Notice is the user-facing message for an export that produced nothing.
func Notice(kind Kind, err error) string {
	if errors.Is(err, ErrNoRecords) {
		return "No results to export."
	}
	switch kind {
	case KindEmails:
		return "No email found to export."
	case KindPhones:
		return "No phone found to export."
	case KindManychat:
		return "No contact with a valid international (+55...) phone found to export to Manychat."
	default:
		return "Nothing to export."
	}
}
