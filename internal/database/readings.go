// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/climatrace/internal/metrics"
	"github.com/tomtom215/climatrace/internal/models"
)

const (
	// DefaultPageSize is used when a range query asks for limit <= 0.
	DefaultPageSize = 50

	// DefaultReportDays is the number of days returned by the daily report.
	DefaultReportDays = 30

	// maxPrealloc caps the result slice capacity reserved up front; limit is
	// caller controlled and may be arbitrarily large.
	maxPrealloc = 256

	sensorTable = "sensor_data"
)

// NormalizePage applies the range query paging defaults: limit <= 0 becomes
// DefaultPageSize and a negative offset becomes 0.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// InsertReading appends one reading.
func (db *DB) InsertReading(ctx context.Context, r models.Reading) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", sensorTable, time.Since(start), err) }()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO sensor_data ("timestamp", temperature, humidity) VALUES (?, ?, ?)`,
		r.Timestamp.UTC(), r.Temperature, r.Humidity)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

// RangeQuery returns readings with start <= timestamp <= end, newest first,
// after applying NormalizePage to limit and offset.
func (db *DB) RangeQuery(ctx context.Context, start, end time.Time, limit, offset int) (_ []models.Reading, err error) {
	began := time.Now()
	defer func() { metrics.RecordDBQuery("range", sensorTable, time.Since(began), err) }()

	limit, offset = NormalizePage(limit, offset)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT "timestamp", temperature, humidity
		   FROM sensor_data
		  WHERE "timestamp" BETWEEN ? AND ?
		  ORDER BY "timestamp" DESC
		  LIMIT ? OFFSET ?`,
		start.UTC(), end.UTC(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("range query: %w", err)
	}
	defer closeWithLog(rows, "rows")

	readings := make([]models.Reading, 0, min(limit, maxPrealloc))
	for rows.Next() {
		var r models.Reading
		if err := rows.Scan(&r.Timestamp, &r.Temperature, &r.Humidity); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		r.Timestamp = r.Timestamp.UTC()
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate readings: %w", err)
	}
	return readings, nil
}

type dayAccumulator struct {
	agg            models.DailyAggregate
	sumTemperature float64
	sumHumidity    float64
}

func (d *dayAccumulator) add(sumT, maxT, minT, sumH, maxH, minH float64, n int64) {
	if d.agg.Samples == 0 {
		d.agg.MaxTemperature, d.agg.MinTemperature = maxT, minT
		d.agg.MaxHumidity, d.agg.MinHumidity = maxH, minH
	} else {
		d.agg.MaxTemperature = max(d.agg.MaxTemperature, maxT)
		d.agg.MinTemperature = min(d.agg.MinTemperature, minT)
		d.agg.MaxHumidity = max(d.agg.MaxHumidity, maxH)
		d.agg.MinHumidity = min(d.agg.MinHumidity, minH)
	}
	d.sumTemperature += sumT
	d.sumHumidity += sumH
	d.agg.Samples += n
}

func (d *dayAccumulator) result() models.DailyAggregate {
	a := d.agg
	a.AvgTemperature = d.sumTemperature / float64(a.Samples)
	a.AvgHumidity = d.sumHumidity / float64(a.Samples)
	return a
}

// DailyAggregate returns per-day statistics for the most recent limitDays
// days that have data, newest first. Days are calendar dates in the DB's
// location (see WithLocation).
func (db *DB) DailyAggregate(ctx context.Context, limitDays int) (_ []models.DailyAggregate, err error) {
	began := time.Now()
	defer func() { metrics.RecordDBQuery("daily_aggregate", sensorTable, time.Since(began), err) }()

	if limitDays <= 0 {
		limitDays = DefaultReportDays
	}

	// Every UTC offset in use is a multiple of 15 minutes, so a 15 minute
	// bucket never straddles a local midnight.
	rows, err := db.conn.QueryContext(ctx,
		`SELECT time_bucket(INTERVAL '15 minutes', "timestamp") AS bucket,
		        SUM(temperature), MAX(temperature), MIN(temperature),
		        SUM(humidity), MAX(humidity), MIN(humidity),
		        COUNT(*)
		   FROM sensor_data
		  GROUP BY bucket
		  ORDER BY bucket DESC`)
	if err != nil {
		return nil, fmt.Errorf("daily aggregate: %w", err)
	}
	defer closeWithLog(rows, "rows")

	out := make([]models.DailyAggregate, 0, min(limitDays, maxPrealloc))
	var cur *dayAccumulator
	for rows.Next() {
		var (
			bucket           time.Time
			sumT, maxT, minT float64
			sumH, maxH, minH float64
			n                int64
		)
		if err := rows.Scan(&bucket, &sumT, &maxT, &minT, &sumH, &maxH, &minH, &n); err != nil {
			return nil, fmt.Errorf("scan daily aggregate: %w", err)
		}

		day := bucket.UTC().In(db.loc).Format(time.DateOnly)
		if cur == nil || cur.agg.Date != day {
			if cur != nil {
				out = append(out, cur.result())
				if len(out) == limitDays {
					cur = nil
					break
				}
			}
			cur = &dayAccumulator{agg: models.DailyAggregate{Date: day}}
		}
		cur.add(sumT, maxT, minT, sumH, maxH, minH, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily aggregate: %w", err)
	}
	if cur != nil {
		out = append(out, cur.result())
	}
	return out, nil
}

// PurgeOlderThan deletes readings older than horizonDays days before now
// and returns the number of rows removed. Running it twice in a row
// deletes nothing the second time.
func (db *DB) PurgeOlderThan(ctx context.Context, horizonDays int) (deleted int64, err error) {
	began := time.Now()
	defer func() { metrics.RecordDBQuery("purge", sensorTable, time.Since(began), err) }()

	if horizonDays <= 0 {
		return 0, fmt.Errorf("purge horizon must be positive, got %d days", horizonDays)
	}

	cutoff := db.now().UTC().Add(-time.Duration(horizonDays) * 24 * time.Hour)
	res, err := db.conn.ExecContext(ctx, `DELETE FROM sensor_data WHERE "timestamp" < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge readings: %w", err)
	}
	deleted, err = res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge rows affected: %w", err)
	}
	return deleted, nil
}

// CountReadings returns the number of stored readings.
func (db *DB) CountReadings(ctx context.Context) (n int64, err error) {
	began := time.Now()
	defer func() { metrics.RecordDBQuery("count", sensorTable, time.Since(began), err) }()

	if err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM sensor_data`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count readings: %w", err)
	}
	return n, nil
}
