// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

/*
Package api serves the HTTP surface: historical queries, the daily report,
health probes, metrics and the live websocket subscription.

Routes:

	GET /api/data?start=&end=&limit=&offset=   readings in [start, end], newest first
	GET /api/reports/daily                     last 30 days of min/max/avg per day
	GET /api/health/live                       process is up
	GET /api/health/ready                      database reachable (503 otherwise)
	GET /ws, GET /                             websocket live feed
	GET /metrics                               Prometheus exposition

start and end are epoch milliseconds and both are required; a missing or
malformed bound is a 400 VALIDATION_ERROR. limit and offset fall back to 50
and 0 when absent or malformed.

Successful data and report responses are bare JSON arrays in the same
shape the live feed uses:

	[{"timestamp":1780315200123,"temperature":23.5,"humidity":55.2}]

Errors and health responses use the models.APIResponse envelope.

The router is chi with go-chi/cors (CORS must be global to answer preflight
requests), go-chi/httprate per-IP limits on /api, chi's Recoverer, RealIP and
Compress, and Prometheus instrumentation. The websocket routes sit outside
the compressing and instrumented groups because those wrap the
ResponseWriter.
*/
package api
