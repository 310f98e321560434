// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

// Package metrics defines the Prometheus collectors for Climatrace.
//
// Collectors are registered on the default registry at init via promauto
// and exposed by the API at /metrics.
//
// # Ingestion
//
//	ingest_lines_total                        lines read from the device
//	ingest_readings_accepted_total            lines that parsed into a valid reading
//	ingest_readings_rejected_total{reason}    malformed, missing_field, out_of_range
//	ingest_state                              0 disconnected, 1 connecting, 2 streaming, 3 errored
//
// # Fanout
//
//	broadcast_dispatch_duration_seconds       persist plus push, per reading
//	broadcast_persist_failures_total
//	broadcast_deliveries_total
//	broadcast_push_failures_total{kind}       push errors and recovered panics per subscriber kind
//	broadcast_subscribers{kind}               currently registered subscribers
//	relay_publish_total{relay,result}         mqtt and nats relay publishes
//
// # Storage
//
//	duckdb_query_duration_seconds{operation,table}
//	duckdb_query_errors_total{operation,table,error_type}
//	retention_runs_total{result}
//	retention_purged_rows_total
//	circuit_breaker_state{name}               0 closed, 1 half-open, 2 open
//
// # HTTP
//
//	api_requests_total{method,endpoint,status}
//	api_request_duration_seconds{method,endpoint}
//	api_active_requests
package metrics
