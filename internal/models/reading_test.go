// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestReadingMessage(t *testing.T) {
	ts := time.Date(2026, 6, 1, 12, 0, 0, 123_000_000, time.UTC)
	r := Reading{Timestamp: ts, Temperature: 23.5, Humidity: 55.2}

	msg := r.Message()
	if msg.Timestamp != ts.UnixMilli() {
		t.Errorf("Timestamp = %d, want %d", msg.Timestamp, ts.UnixMilli())
	}
	if !msg.Time().Equal(ts) {
		t.Errorf("Time() = %v, want %v", msg.Time(), ts)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"timestamp":1780315200123,"temperature":23.5,"humidity":55.2}`
	if string(data) != want {
		t.Errorf("wire format = %s, want %s", data, want)
	}
}
