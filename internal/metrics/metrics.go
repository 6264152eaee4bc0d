// Package metrics defines the Prometheus metrics exported by the catalog
// server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search outcomes recorded by RecordSearch.
const (
	OutcomeResults = "results"
	OutcomeEmpty   = "empty"
	OutcomeBrowse  = "browse" // empty query
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Render metrics
	RenderDurationSeconds *prometheus.HistogramVec

	// Search metrics
	SearchRequestsTotal *prometheus.CounterVec
	SearchResults       prometheus.Histogram

	// Dataset metrics
	DatasetReloadsTotal      *prometheus.CounterVec
	DatasetLoadDuration      *prometheus.HistogramVec
	DatasetRows              *prometheus.GaugeVec
	DatasetLastLoadTimestamp prometheus.Gauge

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec

	// Singleflight metrics
	SingleflightDedupTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	return &Metrics{
		registry: registry,

		RenderDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_render_duration_seconds",
				Help:    "Catalog render duration in seconds by endpoint",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"endpoint"}, // endpoint: page, rows, api
		),

		SearchRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_search_requests_total",
				Help: "Total number of catalog renders by outcome",
			},
			[]string{"outcome"}, // outcome: results, empty, browse
		),

		SearchResults: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "catalog_search_results",
				Help:    "Number of rows returned per non-empty search",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 200},
			},
		),

		DatasetReloadsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_dataset_reloads_total",
				Help: "Total number of dataset reload attempts by source and status",
			},
			[]string{"source", "status"}, // status: success, error, unchanged
		),

		DatasetLoadDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_dataset_load_duration_seconds",
				Help:    "Dataset load duration in seconds by source",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{"source"},
		),

		DatasetRows: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "catalog_dataset_rows",
				Help: "Number of rows in the active dataset by region",
			},
			[]string{"region"},
		),

		DatasetLastLoadTimestamp: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "catalog_dataset_last_load_timestamp_seconds",
				Help: "Unix time of the last successful dataset load",
			},
		),

		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_http_errors_total",
				Help: "Total HTTP errors by type and endpoint",
			},
			[]string{"error_type", "endpoint"}, // error_type: no_snapshot, bad_signals, stream
		),

		SingleflightDedupTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_singleflight_dedup_total",
				Help: "Total number of calls that joined an in-flight operation instead of running it",
			},
			[]string{"operation"},
		),
	}
}

// RecordRender records the duration of one catalog render.
func (m *Metrics) RecordRender(endpoint string, duration time.Duration) {
	m.RenderDurationSeconds.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordSearch records the outcome of a render and, for searches, the number
// of rows returned.
func (m *Metrics) RecordSearch(query string, results int) {
	switch {
	case query == "":
		m.SearchRequestsTotal.WithLabelValues(OutcomeBrowse).Inc()
		return
	case results == 0:
		m.SearchRequestsTotal.WithLabelValues(OutcomeEmpty).Inc()
	default:
		m.SearchRequestsTotal.WithLabelValues(OutcomeResults).Inc()
	}
	m.SearchResults.Observe(float64(results))
}

// RecordReload records a dataset reload attempt.
func (m *Metrics) RecordReload(source, status string, duration time.Duration) {
	m.DatasetReloadsTotal.WithLabelValues(source, status).Inc()
	if status == "success" {
		m.DatasetLoadDuration.WithLabelValues(source).Observe(duration.Seconds())
	}
}

// SetDatasetRows replaces the per-region row gauges.
func (m *Metrics) SetDatasetRows(rows map[string]int, loadedAt time.Time) {
	m.DatasetRows.Reset()
	for region, n := range rows {
		m.DatasetRows.WithLabelValues(region).Set(float64(n))
	}
	m.DatasetLastLoadTimestamp.Set(float64(loadedAt.Unix()))
}

// RecordHTTPError records an HTTP error.
func (m *Metrics) RecordHTTPError(errorType, endpoint string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}

// RecordSingleflightDedup records a call that shared another call's result.
func (m *Metrics) RecordSingleflightDedup(operation string) {
	m.SingleflightDedupTotal.WithLabelValues(operation).Inc()
}

// ObserveLogDrops exports the number of log records the remote shipping
// queue discarded. It may be called once per registry.
func (m *Metrics) ObserveLogDrops(dropped func() uint64) {
	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "catalog_log_records_dropped_total",
			Help: "Total log records dropped because the remote shipping queue was full",
		},
		func() float64 { return float64(dropped()) },
	))
}
