// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package serial

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// Config describes how to reach the sensor device.
type Config struct {
	Device           string
	BaudRate         int
	Simulate         bool
	SimulateInterval time.Duration
}

// Open opens the configured device.
func Open(cfg Config) (io.ReadCloser, error) {
	if cfg.Simulate {
		return NewSimulator(cfg.SimulateInterval), nil
	}

	port, err := serial.Open(cfg.Device, &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial device %s: %w", cfg.Device, err)
	}

	// Drop whatever the device wrote before we attached; it is usually a
	// truncated line.
	if err := port.ResetInputBuffer(); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("reset input buffer on %s: %w", cfg.Device, err)
	}
	return port, nil
}

// Describe returns a human label for logs.
func (c Config) Describe() string {
	if c.Simulate {
		return fmt.Sprintf("simulator(%s)", c.SimulateInterval)
	}
	return fmt.Sprintf("%s@%d", c.Device, c.BaudRate)
}
