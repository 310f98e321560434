// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package database

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/climatrace/internal/config"
	"github.com/tomtom215/climatrace/internal/models"
)

// testDBSemaphore serializes DuckDB usage across tests; concurrent CGO
// connections from many tests have been seen to hang under CI load.
var testDBSemaphore = make(chan struct{}, 1)

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T, opts ...Option) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	opts = append([]Option{WithClock(func() time.Time { return fixedNow }), WithLocation(time.UTC)}, opts...)
	db, err := New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 2}, opts...)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	return db
}

func insertAt(t *testing.T, db *DB, ts time.Time, temp, hum float64) {
	t.Helper()
	if err := db.InsertReading(context.Background(), models.Reading{Timestamp: ts, Temperature: temp, Humidity: hum}); err != nil {
		t.Fatalf("InsertReading: %v", err)
	}
}

func TestInsertAndCount(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	insertAt(t, db, fixedNow, 23.5, 55.2)
	// identical timestamps are both kept
	insertAt(t, db, fixedNow, 23.6, 55.1)

	n, err := db.CountReadings(ctx)
	if err != nil {
		t.Fatalf("CountReadings: %v", err)
	}
	if n != 2 {
		t.Errorf("CountReadings = %d, want 2", n)
	}
	if err := db.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestRangeQuery(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := fixedNow.Add(-time.Hour)
	for i := 0; i < 60; i++ {
		insertAt(t, db, base.Add(time.Duration(i)*time.Minute), float64(i), 50)
	}

	t.Run("newest first with inclusive bounds", func(t *testing.T) {
		got, err := db.RangeQuery(ctx, base, base.Add(2*time.Minute), 10, 0)
		if err != nil {
			t.Fatalf("RangeQuery: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("len = %d, want 3", len(got))
		}
		for i, want := range []float64{2, 1, 0} {
			if got[i].Temperature != want {
				t.Errorf("got[%d].Temperature = %v, want %v", i, got[i].Temperature, want)
			}
		}
		if !got[2].Timestamp.Equal(base) {
			t.Errorf("oldest timestamp = %v, want %v", got[2].Timestamp, base)
		}
	})

	t.Run("limit zero defaults to 50", func(t *testing.T) {
		got, err := db.RangeQuery(ctx, base, fixedNow, 0, 0)
		if err != nil {
			t.Fatalf("RangeQuery: %v", err)
		}
		if len(got) != DefaultPageSize {
			t.Errorf("len = %d, want %d", len(got), DefaultPageSize)
		}
		if got[0].Temperature != 59 {
			t.Errorf("first = %v, want newest (59)", got[0].Temperature)
		}
	})

	t.Run("negative offset treated as zero", func(t *testing.T) {
		a, err := db.RangeQuery(ctx, base, fixedNow, 5, -1)
		if err != nil {
			t.Fatalf("RangeQuery: %v", err)
		}
		b, err := db.RangeQuery(ctx, base, fixedNow, 5, 0)
		if err != nil {
			t.Fatalf("RangeQuery: %v", err)
		}
		if len(a) != 5 || a[0] != b[0] {
			t.Errorf("offset -1 should match offset 0: %v vs %v", a, b)
		}
	})

	t.Run("offset applied after ordering", func(t *testing.T) {
		got, err := db.RangeQuery(ctx, base, fixedNow, 2, 3)
		if err != nil {
			t.Fatalf("RangeQuery: %v", err)
		}
		if len(got) != 2 || got[0].Temperature != 56 || got[1].Temperature != 55 {
			t.Errorf("unexpected page: %+v", got)
		}
	})

	t.Run("huge limit returns only matching rows", func(t *testing.T) {
		got, err := db.RangeQuery(ctx, base, base, 1<<40, 0)
		if err != nil {
			t.Fatalf("RangeQuery: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		if cap(got) > maxPrealloc {
			t.Errorf("cap = %d, want at most %d", cap(got), maxPrealloc)
		}
	})

	t.Run("empty window", func(t *testing.T) {
		got, err := db.RangeQuery(ctx, fixedNow.Add(time.Hour), fixedNow.Add(2*time.Hour), 10, 0)
		if err != nil {
			t.Fatalf("RangeQuery: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("len = %d, want 0", len(got))
		}
	})
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, 50, 0},
		{-3, 5, 50, 5},
		{10, -1, 10, 0},
		{200, 400, 200, 400},
	}
	for _, tt := range tests {
		l, o := NormalizePage(tt.limit, tt.offset)
		if l != tt.wantLimit || o != tt.wantOffset {
			t.Errorf("NormalizePage(%d, %d) = (%d, %d), want (%d, %d)",
				tt.limit, tt.offset, l, o, tt.wantLimit, tt.wantOffset)
		}
	}
}

func TestDailyAggregate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	day1 := time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	insertAt(t, db, day1.Add(1*time.Hour), 10, 40)
	insertAt(t, db, day1.Add(23*time.Hour), 20, 60)
	insertAt(t, db, day2.Add(2*time.Hour), 30, 50)

	got, err := db.DailyAggregate(ctx, 0)
	if err != nil {
		t.Fatalf("DailyAggregate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	if got[0].Date != "2026-06-15" || got[1].Date != "2026-06-14" {
		t.Errorf("dates = %s, %s; want newest first", got[0].Date, got[1].Date)
	}
	d := got[1]
	if d.AvgTemperature != 15 || d.MaxTemperature != 20 || d.MinTemperature != 10 {
		t.Errorf("temperature stats = %+v", d)
	}
	if d.AvgHumidity != 50 || d.MaxHumidity != 60 || d.MinHumidity != 40 {
		t.Errorf("humidity stats = %+v", d)
	}
	if d.Samples != 2 {
		t.Errorf("Samples = %d, want 2", d.Samples)
	}

	limited, err := db.DailyAggregate(ctx, 1)
	if err != nil {
		t.Fatalf("DailyAggregate: %v", err)
	}
	if len(limited) != 1 || limited[0].Date != "2026-06-15" {
		t.Errorf("limited = %+v", limited)
	}
}

func TestDailyAggregateLocation(t *testing.T) {
	db := setupTestDB(t, WithLocation(time.FixedZone("UTC-5", -5*60*60)))
	ctx := context.Background()

	day1 := time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	// local: 06-13 20:00, 06-14 18:00, 06-14 21:00
	insertAt(t, db, day1.Add(1*time.Hour), 10, 40)
	insertAt(t, db, day1.Add(23*time.Hour), 20, 60)
	insertAt(t, db, day2.Add(2*time.Hour), 30, 50)

	got, err := db.DailyAggregate(ctx, 0)
	if err != nil {
		t.Fatalf("DailyAggregate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(got), got)
	}
	if got[0].Date != "2026-06-14" || got[1].Date != "2026-06-13" {
		t.Errorf("dates = %s, %s; want 2026-06-14, 2026-06-13", got[0].Date, got[1].Date)
	}
	d := got[0]
	if d.Samples != 2 || d.AvgTemperature != 25 || d.MaxTemperature != 30 || d.MinTemperature != 20 {
		t.Errorf("2026-06-14 temperature stats = %+v", d)
	}
	if d.AvgHumidity != 55 || d.MaxHumidity != 60 || d.MinHumidity != 50 {
		t.Errorf("2026-06-14 humidity stats = %+v", d)
	}
	if got[1].Samples != 1 || got[1].AvgTemperature != 10 {
		t.Errorf("2026-06-13 stats = %+v", got[1])
	}
}

func TestDailyAggregateEmpty(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.DailyAggregate(context.Background(), 30)
	if err != nil {
		t.Fatalf("DailyAggregate: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestPurgeOlderThan(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	insertAt(t, db, fixedNow.Add(-31*24*time.Hour), 1, 1)
	insertAt(t, db, fixedNow.Add(-30*24*time.Hour-time.Second), 2, 2)
	insertAt(t, db, fixedNow.Add(-29*24*time.Hour), 3, 3)
	insertAt(t, db, fixedNow, 4, 4)

	deleted, err := db.PurgeOlderThan(ctx, 30)
	if err != nil {
		t.Fatalf("PurgeOlderThan: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	// idempotent
	deleted, err = db.PurgeOlderThan(ctx, 30)
	if err != nil {
		t.Fatalf("PurgeOlderThan (second run): %v", err)
	}
	if deleted != 0 {
		t.Errorf("second run deleted = %d, want 0", deleted)
	}

	n, err := db.CountReadings(ctx)
	if err != nil {
		t.Fatalf("CountReadings: %v", err)
	}
	if n != 2 {
		t.Errorf("remaining = %d, want 2", n)
	}

	if _, err := db.PurgeOlderThan(ctx, 0); err == nil {
		t.Error("expected error for zero horizon")
	}
}
