// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlog_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playlog_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playlog_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Game catalog (IGDB)
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlog_catalog_requests_total",
			Help: "Calls to the game catalog by operation and outcome",
		},
		[]string{"operation", "outcome"}, // outcome: success, failure, rejected
	)

	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playlog_catalog_request_duration_seconds",
			Help:    "Latency of game catalog calls in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	CatalogTokenRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playlog_catalog_token_refreshes_total",
			Help: "Number of times the catalog bearer credential was fetched",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "playlog_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Lifecycle
	ConversionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playlog_conversions_total",
			Help: "Currently-playing entries converted into reviews",
		},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playlog_uploads_total",
			Help: "Uploaded files by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)
)

// RecordAPIRequest records one finished HTTP request.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCatalogCall records one catalog call.
func RecordCatalogCall(operation, outcome string, duration time.Duration) {
	CatalogRequestsTotal.WithLabelValues(operation, outcome).Inc()
	if outcome != "rejected" {
		CatalogRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

// RecordUpload records one upload attempt.
func RecordUpload(backend string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	UploadsTotal.WithLabelValues(backend, outcome).Inc()
}
