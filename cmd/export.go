package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/cnpj-leads/internal/export"
	"github.com/sells-group/cnpj-leads/internal/model"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export contacts from previously saved records",
	Long:  "Reads records saved with search --raw-out (or a raw office search response) and writes the selected export files without calling the registry.",
	Example: `  cnpj-leads export --input raw.json --emails --phones
  cnpj-leads export --input raw.json --manychat --encoding windows-1252`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("export"); err != nil {
			return err
		}

		input, _ := cmd.Flags().GetString("input")
		records, err := loadRecords(input)
		if err != nil {
			return err
		}
		opts, err := exportOptions(cmd)
		if err != nil {
			return err
		}

		kinds := selectedKinds(cmd)
		if len(kinds) == 0 {
			kinds = export.Kinds
		}

		zap.L().Info("exporting saved records",
			zap.String("input", input),
			zap.Int("records", len(records)),
		)
		return writeExports(os.Stderr, exportDir(cmd), kinds, records, opts)
	},
}

func init() {
	exportCmd.Flags().String("input", "", "JSON file with saved records (required)")
	_ = exportCmd.MarkFlagRequired("input")
	addExportFlags(exportCmd)

	rootCmd.AddCommand(exportCmd)
}

// addExportFlags registers the flags shared by search and export.
func addExportFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Bool("emails", false, "write the email list ("+export.KindEmails.FileName()+")")
	f.Bool("phones", false, "write the phone list ("+export.KindPhones.FileName()+")")
	f.Bool("manychat", false, "write the Manychat contact CSV ("+export.KindManychat.FileName()+")")
	f.Bool("xlsx", false, "write the results spreadsheet ("+export.KindXLSX.FileName()+")")
	f.Bool("valid-emails-only", false, "drop emails that are not valid addresses")
	f.String("encoding", "", "charset of text exports, e.g. utf-8 or windows-1252 (default from config)")
	f.String("out-dir", "", "directory for export files (default from config)")
}

// selectedKinds returns the export kinds whose flag is set, in export order.
func selectedKinds(cmd *cobra.Command) []export.Kind {
	var kinds []export.Kind
	for _, k := range export.Kinds {
		if on, _ := cmd.Flags().GetBool(string(k)); on {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func exportOptions(cmd *cobra.Command) (export.Options, error) {
	opts := export.Options{Charset: cfg.Export.Encoding}
	opts.ValidEmailsOnly, _ = cmd.Flags().GetBool("valid-emails-only")
	if enc, _ := cmd.Flags().GetString("encoding"); enc != "" {
		opts.Charset = enc
	}
	if err := export.ValidateCharset(opts.Charset); err != nil {
		return opts, err
	}
	return opts, nil
}

func exportDir(cmd *cobra.Command) string {
	if dir, _ := cmd.Flags().GetString("out-dir"); dir != "" {
		return dir
	}
	return cfg.Export.Dir
}

// writeExports builds each kind and writes it under dir. Kinds with nothing
// to export print a notice to w and write no file.
func writeExports(w io.Writer, dir string, kinds []export.Kind, records []model.Record, opts export.Options) error {
	if len(kinds) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "export: create %s", dir)
	}

	for _, kind := range kinds {
		body, err := export.Build(kind, records, opts)
		if err != nil {
			if errors.Is(err, export.ErrNoRecords) || errors.Is(err, export.ErrNothingToExport) {
				_, _ = fmt.Fprintln(w, export.Notice(kind, err))
				continue
			}
			return eris.Wrapf(err, "export: build %s", kind)
		}

		path := filepath.Join(dir, kind.FileName())
		if err := os.WriteFile(path, body, 0o644); err != nil {
			return eris.Wrapf(err, "export: write %s", path)
		}
		_, _ = fmt.Fprintf(w, "Wrote %s\n", path)
	}
	return nil
}

type savedRecords struct {
	Records []model.Record `json:"records"`
}

// saveRecords writes records as {"records": [...]}, the shape of an office
// search response, so loadRecords reads either.
func saveRecords(path string, records []model.Record) error {
	if records == nil {
		records = []model.Record{}
	}
	b, err := json.MarshalIndent(savedRecords{Records: records}, "", "  ")
	if err != nil {
		return eris.Wrap(err, "save records: marshal")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return eris.Wrapf(err, "save records: write %s", path)
	}
	return nil
}

// loadRecords reads a saved records file. A bare JSON array is also accepted.
func loadRecords(path string) ([]model.Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "load records: read %s", path)
	}

	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var records []model.Record
		if err := json.Unmarshal(b, &records); err != nil {
			return nil, eris.Wrapf(err, "load records: parse %s", path)
		}
		return records, nil
	}

	var saved savedRecords
	if err := json.Unmarshal(b, &saved); err != nil {
		return nil, eris.Wrapf(err, "load records: parse %s", path)
	}
	return saved.Records, nil
}
