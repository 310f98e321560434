// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package models

import (
	"time"
)

// APIResponse is the envelope for error and health responses.
//
//	{
//	  "status": "error",
//	  "error": {"code": "VALIDATION_ERROR", "message": "start and end are required"},
//	  "metadata": {"timestamp": "2026-06-01T12:00:00Z"}
//	}
//
// The reading and report endpoints return bare JSON arrays instead, which is
// what the dashboard consumes.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data,omitempty"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is a machine-readable error code plus a human message.
//
// Codes: VALIDATION_ERROR, DATABASE_ERROR, RATE_LIMIT_EXCEEDED, SERVICE_UNAVAILABLE.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the payload of /api/health/ready.
type HealthStatus struct {
	Status         string      `json:"status"`
	DatabaseOK     bool        `json:"database_ok"`
	IngestState    string      `json:"ingest_state"`
	Subscribers    int         `json:"subscribers"`
	Viewers        int         `json:"viewers"`
	StoredReadings int64       `json:"stored_readings"`
	ReportCache    CacheStatus `json:"report_cache"`
}

// CacheStatus summarises a response cache.
type CacheStatus struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}
