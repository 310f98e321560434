// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

// Package logging provides the process-wide zerolog logger for Climatrace.
//
// Every component logs through the package-level helpers so that level and
// output format are controlled in one place:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("device", "/dev/ttyACM0").Msg("Serial device opened")
//
// Components that log frequently create a child logger once:
//
//	log := logging.WithComponent("ingest")
//	log.Warn().Err(err).Msg("Discarded reading")
//
// # Configuration
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
//
// # Context
//
// Each ingestion session and each HTTP request carries a correlation ID.
// Ctx(ctx) returns a logger that already has the correlation_id and
// request_id fields attached.
//
// # slog
//
// suture reports supervisor events through log/slog. NewSlogLogger returns
// an *slog.Logger whose records are written by zerolog, so supervisor
// restarts and backoffs appear in the same stream as everything else.
package logging
