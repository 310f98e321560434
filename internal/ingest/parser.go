// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package ingest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/climatrace/internal/models"
	"github.com/tomtom215/climatrace/internal/validation"
)

// Parse failure kinds. Returned errors wrap exactly one of these.
var (
	ErrMalformed    = errors.New("malformed record")
	ErrMissingField = errors.New("missing field")
	ErrOutOfRange   = errors.New("value out of range")
)

// devicePayload is the device record. Unknown fields are ignored.
type devicePayload struct {
	Temperature *float64 `json:"temperature" validate:"required,gte=-50,lte=100"`
	Humidity    *float64 `json:"humidity" validate:"required,gte=0,lte=100"`
}

// ParseReading decodes and validates one device line. The reading is
// stamped with now truncated to the millisecond.
func ParseReading(line string, now time.Time) (models.Reading, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return models.Reading{}, fmt.Errorf("%w: not a JSON object", ErrMalformed)
	}

	var p devicePayload
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil {
		return models.Reading{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if verr := validation.ValidateStruct(&p); verr != nil {
		if verr.HasTag("required") {
			return models.Reading{}, fmt.Errorf("%w: %s", ErrMissingField, verr.Error())
		}
		return models.Reading{}, fmt.Errorf("%w: %s", ErrOutOfRange, verr.Error())
	}

	return models.Reading{
		Timestamp:   now.Truncate(time.Millisecond),
		Temperature: *p.Temperature,
		Humidity:    *p.Humidity,
	}, nil
}

// RejectReason maps a parse error to a short metric label.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.Is(err, ErrOutOfRange):
		return "out_of_range"
	default:
		return "malformed"
	}
}
