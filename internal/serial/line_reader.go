// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package serial

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxLineLength bounds a single record.
const MaxLineLength = 64 * 1024

// ErrLineTooLong is returned when no terminator appears within MaxLineLength bytes.
var ErrLineTooLong = errors.New("serial: line exceeds maximum length")

// LineReader yields '\n'-terminated lines from a byte stream.
type LineReader struct {
	scanner *bufio.Scanner
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), MaxLineLength)
	s.Split(scanTerminatedLines)
	return &LineReader{scanner: s}
}

// Next blocks until a complete non-blank line is available. The terminator
// and any trailing '\r' are stripped. It returns io.EOF when the stream ends;
// an unterminated tail is discarded.
func (lr *LineReader) Next() (string, error) {
	for lr.scanner.Scan() {
		line := strings.TrimRight(lr.scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		return line, nil
	}

	err := lr.scanner.Err()
	switch {
	case err == nil:
		return "", io.EOF
	case errors.Is(err, bufio.ErrTooLong):
		return "", ErrLineTooLong
	default:
		return "", fmt.Errorf("read serial stream: %w", err)
	}
}

// scanTerminatedLines is bufio.ScanLines without the final-token-at-EOF rule.
func scanTerminatedLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), nil, nil
	}
	return 0, nil, nil
}
