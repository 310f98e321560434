// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

// Package ingest drives the device-to-subscriber pipeline.
//
// ParseReading turns one device line into a validated models.Reading. The
// Coordinator owns the device session: it opens the device, reads lines,
// parses them and hands each valid reading to the dispatcher, strictly one
// at a time so readings reach the store and subscribers in line order.
//
// Coordinator states:
//
//	Disconnected -> Connecting -> Streaming -> Errored
//	                                       \-> Disconnected (shutdown)
//
// A device fault is terminal unless reconnect is enabled, in which case the
// supervisor restarts the coordinator with backoff and it re-enters
// Connecting. Bad lines never stop the stream; they are logged, counted and
// dropped.
package ingest
