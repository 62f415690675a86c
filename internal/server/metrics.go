package server

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "cnpj_leads"

// Metrics counts searches and export downloads served by the API.
type Metrics struct {
	searches       *prometheus.CounterVec
	exports        *prometheus.CounterVec
	searchDuration prometheus.Histogram
}

func registerCollector(reg prometheus.Registerer, c prometheus.Collector) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return
		}
	}
}

// NewMetrics creates the API collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "searches_total",
			Help:      "Registry searches by result (ok, invalid, upstream_error).",
		}, []string{"result"}),

		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "exports_total",
			Help:      "Export downloads by kind and result (ok, empty, error).",
		}, []string{"kind", "result"}),

		searchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "search_duration_seconds",
			Help:      "Wall time of registry searches, all pages included.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
	}

	registerCollector(reg, m.searches)
	registerCollector(reg, m.exports)
	registerCollector(reg, m.searchDuration)

	return m
}

func (m *Metrics) observeSearch(result string, d time.Duration) {
	m.searches.WithLabelValues(result).Inc()
	if result != "invalid" {
		m.searchDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) incExport(kind, result string) {
	m.exports.WithLabelValues(kind, result).Inc()
}
