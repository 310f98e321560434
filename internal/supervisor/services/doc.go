// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

/*
Package services provides suture.Service wrappers for components whose
lifecycle is not already a Serve(ctx) method.

  - HTTPServerService binds the listener and drives *http.Server, shutting it
    down gracefully when the tree stops.
  - HubService runs the subscriber registry so every websocket client and
    relay is detached on shutdown.
  - NATSServerService owns the embedded NATS server's shutdown and reports
    the server dying underneath the relays.

The ingest coordinator, retention sweeper and relays implement
suture.Service themselves and are added to the tree directly.
*/
package services
