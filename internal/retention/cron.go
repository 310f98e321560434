// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package retention

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidSchedule is wrapped by every schedule parse error.
var ErrInvalidSchedule = errors.New("invalid retention schedule")

// fieldSet is a bitmask of allowed values for one cron field.
type fieldSet uint64

func (f fieldSet) has(v int) bool { return f&(1<<uint(v)) != 0 }

func (f fieldSet) count() int { return bits.OnesCount64(uint64(f)) }

type fieldSpec struct {
	name     string
	min, max int
}

var fieldSpecs = [5]fieldSpec{
	{"minute", 0, 59},
	{"hour", 0, 23},
	{"day-of-month", 1, 31},
	{"month", 1, 12},
	{"day-of-week", 0, 7},
}

// CronExpression is a parsed 5-field cron schedule.
type CronExpression struct {
	expr    string
	minutes fieldSet
	hours   fieldSet
	dom     fieldSet
	months  fieldSet
	dow     fieldSet

	domAny bool
	dowAny bool
}

// ParseCron parses a standard 5-field cron expression.
//
// Examples:
//   - "0 0 * * *" - daily at midnight
//   - "30 3 * * 0" - Sundays at 03:30
//   - "0 */6 * * *" - every six hours
func ParseCron(expr string) (*CronExpression, error) {
	fields := strings.Fields(expr)
	if len(fields) != len(fieldSpecs) {
		return nil, fmt.Errorf("%w: want 5 fields, got %d in %q", ErrInvalidSchedule, len(fields), expr)
	}

	var sets [5]fieldSet
	for i, f := range fields {
		set, err := parseField(f, fieldSpecs[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %s field: %v", ErrInvalidSchedule, fieldSpecs[i].name, err)
		}
		sets[i] = set
	}

	// 7 is an alias for Sunday.
	dow := sets[4]
	if dow.has(7) {
		dow = (dow &^ (1 << 7)) | 1
	}

	return &CronExpression{
		expr:    expr,
		minutes: sets[0],
		hours:   sets[1],
		dom:     sets[2],
		months:  sets[3],
		dow:     dow,
		domAny:  sets[2].count() == 31,
		dowAny:  dow.count() == 7,
	}, nil
}

// String returns the expression as written.
func (c *CronExpression) String() string {
	return c.expr
}

// searchLimit bounds NextRun for schedules that can never fire, such as Feb 30.
const searchLimit = 5 * 366 * 24 * time.Hour

// NextRun returns the first matching minute strictly after after, evaluated
// in loc (UTC when nil). It returns the zero time if nothing matches within
// five years.
func (c *CronExpression) NextRun(after time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t := after.In(loc).Truncate(time.Minute).Add(time.Minute)
	limit := t.Add(searchLimit)

	for t.Before(limit) {
		switch {
		case !c.months.has(int(t.Month())):
			t = time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, loc)
		case !c.dayMatches(t):
			t = time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc)
		case !c.hours.has(t.Hour()):
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, loc)
		case !c.minutes.has(t.Minute()):
			t = t.Truncate(time.Minute).Add(time.Minute)
		default:
			return t
		}
	}
	return time.Time{}
}

func (c *CronExpression) dayMatches(t time.Time) bool {
	domMatch := c.dom.has(t.Day())
	dowMatch := c.dow.has(int(t.Weekday()))
	switch {
	case c.domAny && c.dowAny:
		return true
	case c.domAny:
		return dowMatch
	case c.dowAny:
		return domMatch
	default:
		return domMatch || dowMatch
	}
}

func parseField(field string, spec fieldSpec) (fieldSet, error) {
	var set fieldSet
	for _, part := range strings.Split(field, ",") {
		s, err := parsePart(part, spec)
		if err != nil {
			return 0, err
		}
		set |= s
	}
	return set, nil
}

func parsePart(part string, spec fieldSpec) (fieldSet, error) {
	if part == "" {
		return 0, errors.New("empty value")
	}

	rangePart, step := part, 1
	if i := strings.IndexByte(part, '/'); i >= 0 {
		n, err := strconv.Atoi(part[i+1:])
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid step %q", part[i+1:])
		}
		rangePart, step = part[:i], n
	}

	lo, hi := spec.min, spec.max
	switch {
	case rangePart == "*":
	case strings.Contains(rangePart, "-"):
		a, b, _ := strings.Cut(rangePart, "-")
		var err error
		if lo, err = parseValue(a, spec); err != nil {
			return 0, err
		}
		if hi, err = parseValue(b, spec); err != nil {
			return 0, err
		}
		if lo > hi {
			return 0, fmt.Errorf("range %d-%d is reversed", lo, hi)
		}
	default:
		v, err := parseValue(rangePart, spec)
		if err != nil {
			return 0, err
		}
		lo = v
		if step == 1 {
			hi = v
		}
	}

	var set fieldSet
	for v := lo; v <= hi; v += step {
		set |= 1 << uint(v)
	}
	return set, nil
}

func parseValue(s string, spec fieldSpec) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	if v < spec.min || v > spec.max {
		return 0, fmt.Errorf("value %d outside %d-%d", v, spec.min, spec.max)
	}
	return v, nil
}
