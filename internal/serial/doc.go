// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

// Package serial turns a sensor device byte stream into text lines.
//
// Open returns the device as an io.ReadCloser, either a real serial port
// (go.bug.st/serial, 8N1 at the configured baud rate) or a Simulator that
// emits plausible readings for development without hardware. LineReader
// splits the stream strictly on '\n', buffering partial data until its
// terminator arrives.
//
// A read error from the device ends the stream. LineReader never retries;
// reconnecting is the caller's decision.
package serial
