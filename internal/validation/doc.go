// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

// Package validation wraps go-playground/validator v10 with a shared,
// lazily built validator instance.
//
// Field names in errors come from the json tag, so a failed rule on
//
//	Temperature *float64 `json:"temperature" validate:"required,gte=-50,lte=100"`
//
// is reported as "temperature must be less than or equal to 100". Both
// device records and HTTP query parameters are checked through here.
package validation
