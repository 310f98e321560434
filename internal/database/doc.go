// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

// Package database is the DuckDB-backed reading store.
//
// Readings live in a single append-only table:
//
//	sensor_data("timestamp" TIMESTAMP, temperature DOUBLE, humidity DOUBLE)
//
// Timestamps are stored as UTC. There is no uniqueness constraint; two
// readings with the same millisecond are both kept. Rows are never updated
// and are only deleted in bulk by PurgeOlderThan.
//
// Every query is timed into the duckdb_query_* Prometheus metrics.
package database
