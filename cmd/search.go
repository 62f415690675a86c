package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/cnpj-leads/internal/config"
	"github.com/sells-group/cnpj-leads/internal/export"
	"github.com/sells-group/cnpj-leads/internal/search"
	"github.com/sells-group/cnpj-leads/pkg/cnpja"
)

// nameWidth caps the company name column of the results table.
const nameWidth = 40

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search companies by founding date and export their contacts",
	Example: `  cnpj-leads search --from 2025-01-01 --to 2025-01-31
  cnpj-leads search --from 2025-01-01 --optant=false --limit 500 --manychat --xlsx`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("search"); err != nil {
			return err
		}

		q, err := searchQuery(cmd)
		if err != nil {
			return err
		}
		opts, err := exportOptions(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		id := uuid.NewString()
		log := zap.L().With(zap.String("request_id", id))
		log.Debug("search started")

		res, err := newSearchService(cfg).Run(ctx, q)
		if err != nil {
			log.Error("search failed", zap.Error(err))
			return eris.New(search.Describe(err))
		}

		if len(res.Records) == 0 {
			fmt.Fprintln(os.Stderr, "No companies found for this period.")
		} else {
			formatResults(os.Stdout, export.BuildRows(res.Records))
			fmt.Fprintf(os.Stderr, "%d companies found.\n", len(res.Records))
		}

		if path, _ := cmd.Flags().GetString("raw-out"); path != "" {
			if err := saveRecords(path, res.Records); err != nil {
				return err
			}
			log.Info("raw records saved", zap.String("path", path))
		}

		return writeExports(os.Stderr, exportDir(cmd), selectedKinds(cmd), res.Records, opts)
	},
}

func init() {
	addSearchFlags(searchCmd)
	addExportFlags(searchCmd)

	rootCmd.AddCommand(searchCmd)
}

func addSearchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("from", "", "earliest founding date, YYYY-MM-DD (default: search.lookback_days ago)")
	f.String("to", "", "latest founding date, YYYY-MM-DD (default: today)")
	f.Int("limit", 0, "records per page (default from config)")
	f.Int("pages", 0, "maximum number of pages to follow (default from config)")
	f.Bool("optant", true, "only SIMEI optants (micro-entrepreneurs)")
	f.String("raw-out", "", "save the raw records as JSON for a later export")
}

// searchQuery reads the search flags. Unset flags leave the query field zero
// so the service defaults apply.
func searchQuery(cmd *cobra.Command) (search.Query, error) {
	var q search.Query
	f := cmd.Flags()

	from, _ := f.GetString("from")
	to, _ := f.GetString("to")
	var err error
	if q.From, err = parseDateFlag("from", from); err != nil {
		return q, err
	}
	if q.To, err = parseDateFlag("to", to); err != nil {
		return q, err
	}

	q.Limit, _ = f.GetInt("limit")
	q.Pages, _ = f.GetInt("pages")
	if f.Changed("optant") {
		optant, _ := f.GetBool("optant")
		q.Optant = &optant
	}
	return q, nil
}

func parseDateFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(search.DateLayout, value)
	if err != nil {
		return time.Time{}, eris.Errorf("invalid --%s %q: expected YYYY-MM-DD", name, value)
	}
	return t, nil
}

// newSearchService wires the registry client from config.
func newSearchService(c *config.Config) *search.Service {
	client := cnpja.NewClient(c.CNPJa.Key,
		cnpja.WithBaseURL(c.CNPJa.BaseURL),
		cnpja.WithHTTPClient(&http.Client{Timeout: time.Duration(c.CNPJa.TimeoutSecs) * time.Second}),
		cnpja.WithRateLimit(c.CNPJa.RequestsPerMinute),
	)
	return search.NewService(client, search.Defaults{
		Limit:        c.Search.Limit,
		MaxPages:     c.Search.MaxPages,
		LookbackDays: c.Search.LookbackDays,
		Optant:       c.Search.Optant,
	})
}

// formatResults writes the results table to out.
func formatResults(out io.Writer, rows []export.Row) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CNPJ\tRAZÃO SOCIAL\tABERTURA\tEMAIL\tTELEFONE")
	_, _ = fmt.Fprintln(w, "----\t------------\t--------\t-----\t--------")

	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.CNPJ,
			runewidth.Truncate(r.Name, nameWidth, "..."),
			r.Founded,
			r.Email,
			r.Phone,
		)
	}
	_ = w.Flush()
}
