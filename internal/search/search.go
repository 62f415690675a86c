// Package search runs one registry lookup with the configured defaults.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/cnpj-leads/internal/model"
	"github.com/sells-group/cnpj-leads/pkg/cnpja"
)

// DateLayout is the format of the founding-date bounds.
const DateLayout = "2006-01-02"

// ErrInvalidRange is returned when the start date is after the end date.
var ErrInvalidRange = eris.New("the start date cannot be after the end date")

// Query is a user search. Zero fields take the service defaults.
type Query struct {
	From   time.Time
	To     time.Time
	Limit  int
	Pages  int
	Optant *bool
}

// Defaults fill unset query fields.
type Defaults struct {
	Limit        int
	MaxPages     int
	LookbackDays int
	Optant       bool
}

// Result holds the records of one search. Each search replaces the previous
// result wholesale.
type Result struct {
	Params  cnpja.SearchParams
	Pages   int
	Records []model.Record
}

// Service runs searches against the registry.
type Service struct {
	client   cnpja.Client
	defaults Defaults
	now      func() time.Time
}

// NewService creates a search service.
func NewService(client cnpja.Client, defaults Defaults) *Service {
	if defaults.Limit <= 0 {
		defaults.Limit = 100
	}
	if defaults.MaxPages <= 0 {
		defaults.MaxPages = 1
	}
	if defaults.LookbackDays <= 0 {
		defaults.LookbackDays = 180
	}
	return &Service{client: client, defaults: defaults, now: time.Now}
}

// Resolve applies defaults to q and validates the date range. Without dates
// the range covers the last LookbackDays days.
func (s *Service) Resolve(q Query) (cnpja.SearchParams, int, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)

	to := q.To
	if to.IsZero() {
		to = today
	}
	from := q.From
	if from.IsZero() {
		from = today.AddDate(0, 0, -s.defaults.LookbackDays)
	}
	if from.After(to) {
		return cnpja.SearchParams{}, 0, ErrInvalidRange
	}

	params := cnpja.SearchParams{
		FoundedFrom: from,
		FoundedTo:   to,
		Optant:      s.defaults.Optant,
		Limit:       s.defaults.Limit,
	}
	if q.Optant != nil {
		params.Optant = *q.Optant
	}
	if q.Limit > 0 {
		params.Limit = q.Limit
	}

	pages := s.defaults.MaxPages
	if q.Pages > 0 {
		pages = q.Pages
	}
	return params, pages, nil
}

// Run resolves q and fetches the matching records.
func (s *Service) Run(ctx context.Context, q Query) (*Result, error) {
	params, pages, err := s.Resolve(q)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	records, err := s.client.SearchAll(ctx, params, pages)
	if err != nil {
		return nil, err
	}

	zap.L().Info("search complete",
		zap.String("from", params.FoundedFrom.Format(DateLayout)),
		zap.String("to", params.FoundedTo.Format(DateLayout)),
		zap.Bool("optant", params.Optant),
		zap.Int("limit", params.Limit),
		zap.Int("records", len(records)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Result{Params: params, Pages: pages, Records: records}, nil
}

// Describe turns a search error into the single message shown to the user.
func Describe(err error) string {
	if errors.Is(err, ErrInvalidRange) {
		return ErrInvalidRange.Error()
	}
	var apiErr *cnpja.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("error fetching data: registry API returned status %d", apiErr.StatusCode)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "error fetching data: request cancelled or timed out"
	}
	return "error fetching data: " + err.Error()
}
