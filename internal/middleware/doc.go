// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

/*
Package middleware provides HTTP instrumentation for the REST API.

PrometheusMetrics records api_requests_total, api_request_duration_seconds
and api_active_requests for every request it wraps. The endpoint label is
the chi route pattern ("/api/data") rather than the raw path, so query
strings and path parameters never create new series.

Routing concerns (CORS, rate limiting, request IDs, compression) use the chi
ecosystem middleware and are assembled in package api.
*/
package middleware
