// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

/*
Package retention deletes readings older than the retention horizon on a
cron schedule.

The default schedule is "0 0 * * *" (midnight, server local time) with a
30 day horizon. Schedules use the standard 5-field cron syntax:

	minute hour day-of-month month day-of-week

with *, n, n-m, lists and /step. When both day fields are restricted a
time matches if either one does.

Sweeper is a suture.Service. It sleeps until the next tick, runs one purge
and goes back to sleep. A failed purge is logged and counted and the next
tick proceeds as usual; there are no retries in between.
*/
package retention
