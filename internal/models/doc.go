// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

/*
Package models defines the data structures shared across Climatrace.

  - Reading: one validated temperature/humidity sample
  - ReadingMessage: the JSON record pushed to live subscribers and returned by /api/data
  - DailyAggregate: per-day statistics computed on demand by the store
  - APIResponse, APIError, Metadata: the envelope used for API errors and health

Readings are immutable once created. They are inserted once and only ever
removed in bulk by the retention purge.
*/
package models
