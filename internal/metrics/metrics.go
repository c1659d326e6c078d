// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

// Package metrics holds the Prometheus instruments exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP layer
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ankibridge_api_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ankibridge_api_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ankibridge_api_active_requests",
			Help: "Number of HTTP requests in flight",
		},
	)

	// AnkiConnect actions
	ActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ankibridge_actions_total",
			Help: "AnkiConnect actions handled, by outcome (ok, error, denied, unknown)",
		},
		[]string{"action", "outcome"},
	)

	ActionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ankibridge_action_duration_seconds",
			Help:    "AnkiConnect action latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 20},
		},
		[]string{"action"},
	)

	// Note core
	ExistenceChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ankibridge_existence_checks_total",
			Help: "Duplicate checks by path (batched, per_item, fail_closed)",
		},
		[]string{"path"},
	)

	ExistenceCandidates = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ankibridge_existence_candidates_total",
			Help: "Candidates evaluated by duplicate checks",
		},
	)

	NotesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ankibridge_notes_written_total",
			Help: "Notes inserted or updated, by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// Media
	MediaStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ankibridge_media_stored_total",
			Help: "Media files stored, by result (new, deduplicated, renamed)",
		},
		[]string{"result"},
	)

	MediaBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ankibridge_media_bytes_total",
			Help: "Bytes written to the media folder",
		},
	)

	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ankibridge_media_fetches_total",
			Help: "Remote media downloads, by outcome (ok, http_error, too_large, rejected, error)",
		},
		[]string{"outcome"},
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ankibridge_media_fetch_duration_seconds",
			Help:    "Remote media download latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ankibridge_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ankibridge_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Store
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ankibridge_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB note store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ankibridge_duckdb_query_errors_total",
			Help: "DuckDB note store query errors",
		},
		[]string{"operation"},
	)

	// Notifications and websocket
	NotificationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ankibridge_notifications_total",
			Help: "Notifications published, by kind",
		},
		[]string{"kind"},
	)

	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ankibridge_websocket_connections",
			Help: "Open websocket connections",
		},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ankibridge_websocket_messages_dropped_total",
			Help: "Broadcasts dropped because the hub channel was full",
		},
	)
)

// RecordAPIRequest records an HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordAction records one AnkiConnect action.
func RecordAction(action, outcome string, duration time.Duration) {
	ActionsTotal.WithLabelValues(action, outcome).Inc()
	ActionDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordExistenceCheck records which path a duplicate check took.
func RecordExistenceCheck(path string, candidates int) {
	ExistenceChecks.WithLabelValues(path).Inc()
	ExistenceCandidates.Add(float64(candidates))
}

// RecordNoteWrite records an insert or update.
func RecordNoteWrite(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	NotesWritten.WithLabelValues(operation, outcome).Inc()
}

// RecordMediaStored records one media write.
func RecordMediaStored(result string, size int) {
	MediaStored.WithLabelValues(result).Inc()
	if result != "deduplicated" {
		MediaBytes.Add(float64(size))
	}
}

// RecordFetch records one remote download.
func RecordFetch(outcome string, duration time.Duration) {
	FetchesTotal.WithLabelValues(outcome).Inc()
	FetchDuration.Observe(duration.Seconds())
}

// RecordDBQuery records a note store query.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}
