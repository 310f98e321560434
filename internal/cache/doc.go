// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

/*
Package cache provides a small thread-safe TTL cache.

The API layer uses it for the daily report: the aggregate scans every row in
the horizon, and dashboards poll it far more often than the numbers move.
Entries expire lazily on read and are swept on write, so no background
goroutine outlives the cache.

	reports := cache.New[[]models.DailyAggregate](30 * time.Second)
	if rows, ok := reports.Get("daily:30"); ok {
	    return rows
	}
	rows, err := store.DailyAggregate(ctx, 30)
	reports.Set("daily:30", rows)
*/
package cache
