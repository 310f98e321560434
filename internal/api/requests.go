// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package api

// ReadingsRequest holds the validated /api/data query.
//
// Start and End are epoch milliseconds and both are required; values before
// 1970 are negative and allowed. Limit and Offset are not validated; the
// store applies its paging defaults.
type ReadingsRequest struct {
	Start  *int64 `json:"start" validate:"required"`
	End    *int64 `json:"end" validate:"required"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}
