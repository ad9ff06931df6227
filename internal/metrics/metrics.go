// Package metrics holds the Prometheus collectors exported on /metrics.
// Every method is safe to call on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles Prometheus collectors on a dedicated registry.
type Metrics struct {
	Registry *prometheus.Registry

	CoverLookups    *prometheus.CounterVec
	CoverStrategies *prometheus.CounterVec
	CoverDuration   prometheus.Histogram

	Mutations       *prometheus.CounterVec
	PersistFailures *prometheus.CounterVec
	BooksTotal      prometheus.Gauge

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New constructs and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		CoverLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pagetrail_cover_lookups_total",
			Help: "Cover resolutions by cache outcome (hit, miss, coalesced, unsettled).",
		}, []string{"outcome"}),
		CoverStrategies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pagetrail_cover_strategy_results_total",
			Help: "Remote cover strategy attempts by strategy and result (found, none, error, skipped).",
		}, []string{"strategy", "result"}),
		CoverDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pagetrail_cover_remote_duration_seconds",
			Help:    "Wall time of a full remote cover strategy chain.",
			Buckets: prometheus.DefBuckets,
		}),
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pagetrail_library_mutations_total",
			Help: "Collection mutations by operation.",
		}, []string{"op"}),
		PersistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pagetrail_persist_failures_total",
			Help: "Failed writes to the backing store by record.",
		}, []string{"record"}),
		BooksTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pagetrail_books",
			Help: "Number of books in the collection.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pagetrail_http_requests_total",
			Help: "HTTP requests by method, route pattern, and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pagetrail_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	registry.MustRegister(
		m.CoverLookups, m.CoverStrategies, m.CoverDuration,
		m.Mutations, m.PersistFailures, m.BooksTotal,
		m.HTTPRequests, m.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// IncCoverLookup counts a cover resolution by cache outcome.
func (m *Metrics) IncCoverLookup(outcome string) {
	if m == nil {
		return
	}
	m.CoverLookups.WithLabelValues(outcome).Inc()
}

// IncCoverStrategy counts one remote strategy attempt.
func (m *Metrics) IncCoverStrategy(strategy, result string) {
	if m == nil {
		return
	}
	m.CoverStrategies.WithLabelValues(strategy, result).Inc()
}

// ObserveCoverChain records how long a remote strategy chain took.
func (m *Metrics) ObserveCoverChain(d time.Duration) {
	if m == nil {
		return
	}
	m.CoverDuration.Observe(d.Seconds())
}

// IncMutation counts a collection mutation.
func (m *Metrics) IncMutation(op string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(op).Inc()
}

// IncPersistFailure counts a failed write of record.
func (m *Metrics) IncPersistFailure(record string) {
	if m == nil {
		return
	}
	m.PersistFailures.WithLabelValues(record).Inc()
}

// SetBooks records the collection size.
func (m *Metrics) SetBooks(n int) {
	if m == nil {
		return
	}
	m.BooksTotal.Set(float64(n))
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}
