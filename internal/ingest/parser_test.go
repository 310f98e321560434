// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package ingest

import (
	"errors"
	"testing"
	"time"
)

func TestParseReading(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 123_456_789, time.UTC)

	tests := []struct {
		name    string
		line    string
		wantErr error
		temp    float64
		hum     float64
	}{
		{name: "valid", line: `{"temperature": 23.5, "humidity": 55.2}`, temp: 23.5, hum: 55.2},
		{name: "integers", line: `{"temperature":20,"humidity":40}`, temp: 20, hum: 40},
		{name: "lower bounds inclusive", line: `{"temperature": -50, "humidity": 0}`, temp: -50, hum: 0},
		{name: "upper bounds inclusive", line: `{"temperature": 100, "humidity": 100}`, temp: 100, hum: 100},
		{name: "extra fields ignored", line: `{"temperature": 1, "humidity": 2, "sensor": "dht22"}`, temp: 1, hum: 2},
		{name: "surrounding whitespace", line: "  {\"temperature\": 1, \"humidity\": 2}\r", temp: 1, hum: 2},
		{name: "not json", line: "not json", wantErr: ErrMalformed},
		{name: "truncated json", line: `{"temperature": 23.5, "humid`, wantErr: ErrMalformed},
		{name: "array", line: `[23.5, 55.2]`, wantErr: ErrMalformed},
		{name: "null literal", line: `null`, wantErr: ErrMalformed},
		{name: "string temperature", line: `{"temperature": "23.5", "humidity": 55.2}`, wantErr: ErrMalformed},
		{name: "boolean humidity", line: `{"temperature": 23.5, "humidity": true}`, wantErr: ErrMalformed},
		{name: "missing humidity", line: `{"temperature": 23.5}`, wantErr: ErrMissingField},
		{name: "null temperature", line: `{"temperature": null, "humidity": 50}`, wantErr: ErrMissingField},
		{name: "empty object", line: `{}`, wantErr: ErrMissingField},
		{name: "temperature too high", line: `{"temperature": 150, "humidity": 50}`, wantErr: ErrOutOfRange},
		{name: "temperature 200", line: `{"temperature": 200, "humidity": 50}`, wantErr: ErrOutOfRange},
		{name: "temperature too low", line: `{"temperature": -50.1, "humidity": 50}`, wantErr: ErrOutOfRange},
		{name: "humidity negative", line: `{"temperature": 20, "humidity": -5}`, wantErr: ErrOutOfRange},
		{name: "humidity above 100", line: `{"temperature": 20, "humidity": 100.01}`, wantErr: ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseReading(tt.line, now)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseReading: %v", err)
			}
			if r.Temperature != tt.temp || r.Humidity != tt.hum {
				t.Errorf("reading = (%v, %v), want (%v, %v)", r.Temperature, r.Humidity, tt.temp, tt.hum)
			}
			if want := now.Truncate(time.Millisecond); !r.Timestamp.Equal(want) {
				t.Errorf("Timestamp = %v, want %v", r.Timestamp, want)
			}
		})
	}
}

func TestRejectReason(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"garbage", "malformed"},
		{`{"temperature": 1}`, "missing_field"},
		{`{"temperature": 1, "humidity": 101}`, "out_of_range"},
	}
	for _, tt := range tests {
		_, err := ParseReading(tt.line, time.Now())
		if got := RejectReason(err); got != tt.want {
			t.Errorf("RejectReason(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}
