// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

/*
Package main is the entry point for the Climatrace server.

Climatrace reads temperature and humidity records from a serial sensor,
stores every valid reading in DuckDB and pushes it live to websocket viewers
and optional MQTT/NATS relays. Readings older than the retention horizon are
purged on a cron schedule (midnight by default).

# Application Architecture

	RootSupervisor ("climatrace")
	├── IngestSupervisor ("ingest-layer")
	│   ├── ingest-coordinator (serial device session)
	│   └── retention-sweeper
	├── MessagingSupervisor ("messaging-layer")
	│   ├── subscriber-hub
	│   ├── nats-server (NATS_EMBEDDED=true)
	│   ├── mqtt-relay (MQTT_ENABLED=true)
	│   └── nats-relay (NATS_ENABLED=true)
	└── APISupervisor ("api-layer")
	    └── http-server

# Configuration

Settings come from built-in defaults, then config.yaml, then environment
variables. The most common ones:

	SERIAL_PORT=/dev/ttyACM0   # sensor device
	SERIAL_BAUD=9600
	SERIAL_SIMULATE=true       # generate readings without hardware
	SERIAL_RECONNECT=false     # device faults end ingestion
	DUCKDB_PATH=/data/climatrace.duckdb
	RETENTION_DAYS=30
	RETENTION_SCHEDULE="0 0 * * *"
	HTTP_PORT=3000

# Endpoints

	GET /api/data?start=<ms>&end=<ms>&limit=&offset=
	GET /api/reports/daily
	GET /api/health/live
	GET /api/health/ready
	GET /ws, GET /        live readings over websocket
	GET /metrics          Prometheus

# Signal Handling

SIGINT and SIGTERM cancel the root context. The tree stops the HTTP server,
detaches every subscriber, closes the device and flushes DuckDB before exit.
*/
package main
