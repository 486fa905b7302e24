// Package metrics provides Prometheus metrics for the case search and summary pipeline
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	SearchRequestsTotal  *prometheus.CounterVec
	SearchPagesTotal     prometheus.Counter
	RecordsEnrichedTotal prometheus.Counter
	DocumentFetchesTotal *prometheus.CounterVec

	GenerationCallsTotal   *prometheus.CounterVec
	GenerationCallDuration prometheus.Histogram
	ToolDispatchesTotal    *prometheus.CounterVec
}

// NewMetrics creates all metrics on a dedicated registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{registry: reg}

	m.SearchRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legaleagle_search_requests_total",
			Help: "Total number of case searches by outcome",
		},
		[]string{"status"},
	)

	m.SearchPagesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "legaleagle_search_pages_total",
			Help: "Total number of search result pages fetched",
		},
	)

	m.RecordsEnrichedTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "legaleagle_records_enriched_total",
			Help: "Total number of case records enriched with case text",
		},
	)

	m.DocumentFetchesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legaleagle_document_fetches_total",
			Help: "Total number of case document fetches by outcome",
		},
		[]string{"status"},
	)

	m.GenerationCallsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legaleagle_generation_calls_total",
			Help: "Total number of generation service calls by outcome",
		},
		[]string{"status"},
	)

	m.GenerationCallDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "legaleagle_generation_call_duration_seconds",
			Help:    "Duration of generation service calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	m.ToolDispatchesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legaleagle_tool_dispatches_total",
			Help: "Total number of function-call dispatches by tool and outcome",
		},
		[]string{"tool", "status"},
	)

	return m
}

// Handler returns the HTTP handler exposing this registry
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordSearch records the outcome of one search invocation
func (m *Metrics) RecordSearch(status string) {
	if m == nil {
		return
	}
	m.SearchRequestsTotal.WithLabelValues(status).Inc()
}

// RecordPage records one fetched result page
func (m *Metrics) RecordPage() {
	if m == nil {
		return
	}
	m.SearchPagesTotal.Inc()
}

// RecordEnriched records one record enriched with case text
func (m *Metrics) RecordEnriched() {
	if m == nil {
		return
	}
	m.RecordsEnrichedTotal.Inc()
}

// RecordDocumentFetch records the outcome of one document fetch
func (m *Metrics) RecordDocumentFetch(status string) {
	if m == nil {
		return
	}
	m.DocumentFetchesTotal.WithLabelValues(status).Inc()
}

// RecordGeneration records one generation call
func (m *Metrics) RecordGeneration(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.GenerationCallsTotal.WithLabelValues(status).Inc()
	m.GenerationCallDuration.Observe(duration.Seconds())
}

// RecordToolDispatch records one function-call dispatch
func (m *Metrics) RecordToolDispatch(tool, status string) {
	if m == nil {
		return
	}
	m.ToolDispatchesTotal.WithLabelValues(tool, status).Inc()
}
