package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/cnpj-leads/internal/contact"
	"github.com/sells-group/cnpj-leads/internal/model"
)

// Row is the table projection of a record.
type Row struct {
	CNPJ    string `json:"cnpj"`
	Name    string `json:"name"`
	Founded string `json:"founded"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// RowHeaders are the column titles of Row, in field order.
var RowHeaders = []string{"CNPJ", "Razão Social", "Data de Abertura", "Email", "Telefone"}

// Values returns the row cells in header order.
func (r Row) Values() []string {
	return []string{r.CNPJ, r.Name, r.Founded, r.Email, r.Phone}
}

// BuildRows projects every record onto a table row.
func BuildRows(records []model.Record) []Row {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		taxID := r.TaxID()
		if taxID == "" {
			taxID = model.NotAvailable
		}
		name := r.CompanyName()
		if name == "" {
			name = model.NotAvailable
		}
		rows = append(rows, Row{
			CNPJ:    model.FormatCNPJ(taxID),
			Name:    name,
			Founded: model.FormatFounded(r.Founded()),
			Email:   contact.ExtractEmail(r),
			Phone:   contact.ExtractPhone(r),
		})
	}
	return rows
}

// WriteXLSX writes rows as a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Empresas")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range RowHeaders {
		header.AddCell().SetString(h)
	}

	for _, r := range rows {
		row := sheet.AddRow()
		for _, v := range r.Values() {
			row.AddCell().SetString(v)
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}
