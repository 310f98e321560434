// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

// Package config loads Climatrace configuration with koanf.
//
// Sources are layered, later layers overriding earlier ones:
//
//  1. Built-in defaults (defaultConfig)
//  2. An optional YAML file (CONFIG_PATH, ./config.yaml, /etc/climatrace/config.yaml)
//  3. Environment variables, through an explicit mapping table
//
// Only mapped environment variables are read, so unrelated variables in the
// process environment never leak into the configuration. Example:
//
//	SERIAL_PORT=/dev/ttyUSB0 RETENTION_DAYS=14 HTTP_PORT=8080 ./climatrace
//
// The equivalent YAML:
//
//	serial:
//	  device: /dev/ttyUSB0
//	retention:
//	  horizon_days: 14
//	server:
//	  port: 8080
package config
