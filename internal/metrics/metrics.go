// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// Ingestion
	IngestLines = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_lines_total",
			Help: "Lines read from the sensor device",
		},
	)

	IngestAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_readings_accepted_total",
			Help: "Lines that produced a valid reading",
		},
	)

	IngestRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_readings_rejected_total",
			Help: "Lines discarded by the parser, by reason",
		},
		[]string{"reason"},
	)

	IngestState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingest_state",
			Help: "Ingestion coordinator state (0=disconnected, 1=connecting, 2=streaming, 3=errored)",
		},
	)

	// Fanout
	DispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "broadcast_dispatch_duration_seconds",
			Help:    "Time to persist and push one reading",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	PersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_persist_failures_total",
			Help: "Readings that could not be stored",
		},
	)

	Deliveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_deliveries_total",
			Help: "Successful pushes to subscribers",
		},
	)

	PushFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_push_failures_total",
			Help: "Failed pushes that removed a subscriber, by subscriber kind",
		},
		[]string{"kind"},
	)

	Subscribers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "broadcast_subscribers",
			Help: "Currently registered subscribers by kind",
		},
		[]string{"kind"},
	)

	RelayPublishes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_publish_total",
			Help: "Readings published to external relays",
		},
		[]string{"relay", "result"},
	)

	// Retention
	RetentionRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retention_runs_total",
			Help: "Retention purge runs by result",
		},
		[]string{"result"},
	)

	RetentionPurgedRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retention_purged_rows_total",
			Help: "Readings deleted by the retention purge",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)
)

// RecordDBQuery records the duration and outcome of one query.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordRejected counts a discarded device line.
func RecordRejected(reason string) {
	IngestRejected.WithLabelValues(reason).Inc()
}

// RecordDispatch records one pass through the dispatcher.
func RecordDispatch(duration time.Duration, persisted bool, delivered int) {
	DispatchDuration.Observe(duration.Seconds())
	if !persisted {
		PersistFailures.Inc()
	}
	Deliveries.Add(float64(delivered))
}

// RecordPushFailure counts a subscriber removed after a failed push.
func RecordPushFailure(kind string) {
	PushFailures.WithLabelValues(kind).Inc()
}

// RecordRelayPublish counts a relay publish attempt.
func RecordRelayPublish(relay string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	RelayPublishes.WithLabelValues(relay, result).Inc()
}

// RecordRetentionRun records one purge.
func RecordRetentionRun(deleted int64, err error) {
	if err != nil {
		RetentionRuns.WithLabelValues("error").Inc()
		return
	}
	RetentionRuns.WithLabelValues("success").Inc()
	RetentionPurgedRows.Add(float64(deleted))
}

// RecordAPIRequest records one completed HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
