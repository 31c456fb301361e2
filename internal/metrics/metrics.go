package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tiltwatch_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tiltwatch_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Ingest metrics
	SamplesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tiltwatch_samples_total",
			Help: "Total number of samples received",
		},
		[]string{"status"}, // status: persisted, unchanged, rejected, failed
	)

	AlertsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tiltwatch_alerts_total",
			Help: "Total number of samples that crossed an alert threshold",
		},
	)

	// Email metrics
	EmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tiltwatch_emails_total",
			Help: "Total number of alert email attempts",
		},
		[]string{"status"}, // status: sent, failed, skipped
	)

	// Storage metrics
	DBWriteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tiltwatch_db_write_duration_seconds",
			Help:    "Time taken to insert a sample",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	DBQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tiltwatch_db_query_duration_seconds",
			Help:    "Time taken to query recent samples",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	DBErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tiltwatch_db_errors_total",
			Help: "Total number of storage errors",
		},
		[]string{"op"}, // op: insert, query
	)

	// Panic recovery
	PanicsRecovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tiltwatch_panics_recovered_total",
			Help: "Total number of panics recovered",
		},
		[]string{"component"},
	)
)
