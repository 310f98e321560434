// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package models

import "time"

// Valid measurement domains. Bounds are inclusive.
const (
	MinTemperature = -50.0
	MaxTemperature = 100.0
	MinHumidity    = 0.0
	MaxHumidity    = 100.0
)

// Reading is a single validated sensor sample. Timestamp is the ingestion
// wall-clock time at millisecond precision, never a device-supplied value.
type Reading struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
}

// Message converts r to its wire representation.
func (r Reading) Message() ReadingMessage {
	return ReadingMessage{
		Timestamp:   r.Timestamp.UnixMilli(),
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
	}
}

// ReadingMessage is the JSON record sent to subscribers:
//
//	{"timestamp": 1718000000000, "temperature": 23.5, "humidity": 55.2}
//
// Timestamp is milliseconds since the Unix epoch.
type ReadingMessage struct {
	Timestamp   int64   `json:"timestamp"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// Time returns the message timestamp as a UTC time.Time.
func (m ReadingMessage) Time() time.Time {
	return time.UnixMilli(m.Timestamp).UTC()
}

// DailyAggregate holds statistics for one calendar date in the server's report location.
type DailyAggregate struct {
	Date           string  `json:"date"` // YYYY-MM-DD
	AvgTemperature float64 `json:"avg_temperature"`
	MaxTemperature float64 `json:"max_temperature"`
	MinTemperature float64 `json:"min_temperature"`
	AvgHumidity    float64 `json:"avg_humidity"`
	MaxHumidity    float64 `json:"max_humidity"`
	MinHumidity    float64 `json:"min_humidity"`
	Samples        int64   `json:"samples"`
}
