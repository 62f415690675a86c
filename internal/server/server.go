// Package server exposes the search table and the export downloads over a
// local HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sells-group/cnpj-leads/internal/export"
	"github.com/sells-group/cnpj-leads/internal/search"
)

// Server serves the search API.
type Server struct {
	searcher *search.Service
	opts     Options
	registry *prometheus.Registry
	metrics  *Metrics
}

// Options configures the handlers.
type Options struct {
	AllowedOrigins []string
	Export         export.Options
}

// New creates a Server backed by searcher.
func New(searcher *search.Service, opts Options) *Server {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	reg := prometheus.NewRegistry()
	registerCollector(reg, prometheus.NewGoCollector())
	return &Server{
		searcher: searcher,
		opts:     opts,
		registry: reg,
		metrics:  NewMetrics(reg),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/export/{kind}", s.handleExport)
	})

	return r
}

type searchResponse struct {
	RequestID string       `json:"request_id"`
	Count     int          `json:"count"`
	Rows      []export.Row `json:"rows"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := uuid.NewString()
	res, err := s.run(r, q)
	if err != nil {
		s.searchFailed(w, id, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		RequestID: id,
		Count:     len(res.Records),
		Rows:      export.BuildRows(res.Records),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	kind, err := export.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := s.opts.Export
	if v := r.URL.Query().Get("valid_emails_only"); v != "" {
		opts.ValidEmailsOnly, _ = strconv.ParseBool(v)
	}

	id := uuid.NewString()
	res, err := s.run(r, q)
	if err != nil {
		s.searchFailed(w, id, err)
		return
	}

	body, err := export.Build(kind, res.Records, opts)
	if err != nil {
		if errors.Is(err, export.ErrNoRecords) || errors.Is(err, export.ErrNothingToExport) {
			s.metrics.incExport(string(kind), "empty")
			writeError(w, http.StatusNotFound, export.Notice(kind, err))
			return
		}
		s.metrics.incExport(string(kind), "error")
		zap.L().Error("server: build export", zap.String("request_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not build export")
		return
	}
	s.metrics.incExport(string(kind), "ok")

	w.Header().Set("Content-Type", kind.ContentType(opts.Charset))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", kind.FileName()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) run(r *http.Request, q search.Query) (*search.Result, error) {
	start := time.Now()
	res, err := s.searcher.Run(r.Context(), q)

	switch {
	case err == nil:
		s.metrics.observeSearch("ok", time.Since(start))
	case errors.Is(err, search.ErrInvalidRange):
		s.metrics.observeSearch("invalid", 0)
	default:
		s.metrics.observeSearch("upstream_error", time.Since(start))
	}
	return res, err
}

func (s *Server) searchFailed(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, search.ErrInvalidRange) {
		writeError(w, http.StatusBadRequest, search.Describe(err))
		return
	}
	zap.L().Error("server: search failed", zap.String("request_id", id), zap.Error(err))
	writeError(w, http.StatusBadGateway, search.Describe(err))
}

// parseQuery reads from, to (YYYY-MM-DD), limit, optant and pages.
func parseQuery(r *http.Request) (search.Query, error) {
	v := r.URL.Query()
	var q search.Query

	from, err := parseDate(v.Get("from"))
	if err != nil {
		return q, fmt.Errorf("invalid from: %w", err)
	}
	to, err := parseDate(v.Get("to"))
	if err != nil {
		return q, fmt.Errorf("invalid to: %w", err)
	}
	q.From, q.To = from, to

	if s := v.Get("limit"); s != "" {
		if q.Limit, err = strconv.Atoi(s); err != nil {
			return q, fmt.Errorf("invalid limit %q", s)
		}
	}
	if s := v.Get("pages"); s != "" {
		if q.Pages, err = strconv.Atoi(s); err != nil {
			return q, fmt.Errorf("invalid pages %q", s)
		}
	}
	if s := v.Get("optant"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return q, fmt.Errorf("invalid optant %q", s)
		}
		q.Optant = &b
	}
	return q, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(search.DateLayout, s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
