// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/climatrace/internal/broadcast"
	"github.com/tomtom215/climatrace/internal/logging"
	"github.com/tomtom215/climatrace/internal/metrics"
	"github.com/tomtom215/climatrace/internal/models"
	"github.com/tomtom215/climatrace/internal/serial"
)

// State is the device session state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateStreaming
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// ErrStreamEnded is returned when the device stream reaches EOF.
var ErrStreamEnded = errors.New("device stream ended")

// Opener opens the device for one session.
type Opener func() (io.ReadCloser, error)

// Dispatcher receives every valid reading.
type Dispatcher interface {
	Dispatch(ctx context.Context, r models.Reading) broadcast.Result
}

// CoordinatorConfig configures a Coordinator.
type CoordinatorConfig struct {
	// Source names the device in logs.
	Source string

	// Reconnect makes a device fault restartable by the supervisor.
	Reconnect bool

	// Now stamps readings. Defaults to time.Now.
	Now func() time.Time
}

// Coordinator runs the device session. It implements suture.Service.
type Coordinator struct {
	open       Opener
	dispatcher Dispatcher
	cfg        CoordinatorConfig
	state      atomic.Int32
}

// NewCoordinator creates a Coordinator in the Disconnected state.
func NewCoordinator(open Opener, dispatcher Dispatcher, cfg CoordinatorConfig) *Coordinator {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Source == "" {
		cfg.Source = "device"
	}
	return &Coordinator{open: open, dispatcher: dispatcher, cfg: cfg}
}

// State returns the current session state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

func (c *Coordinator) setState(s State) {
	c.state.Store(int32(s))
	metrics.IngestState.Set(float64(s))
}

// String implements fmt.Stringer for suture logs.
func (c *Coordinator) String() string {
	return "ingest-coordinator"
}

// Serve opens the device and streams readings until ctx ends or the device
// fails. Lines are parsed and dispatched one at a time in arrival order.
func (c *Coordinator) Serve(ctx context.Context) error {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	log := logging.Ctx(ctx).With().
		Str("component", "ingest").
		Str("source", c.cfg.Source).
		Logger()

	c.setState(StateConnecting)
	log.Info().Msg("Connecting to sensor device")

	dev, err := c.open()
	if err != nil {
		c.setState(StateErrored)
		log.Error().Err(err).Msg("Failed to open sensor device")
		return c.fault(err)
	}

	var closeOnce sync.Once
	closeDevice := func() {
		closeOnce.Do(func() {
			if cerr := dev.Close(); cerr != nil {
				log.Debug().Err(cerr).Msg("Error closing sensor device")
			}
		})
	}
	stop := context.AfterFunc(ctx, closeDevice)
	defer stop()
	defer closeDevice()

	c.setState(StateStreaming)
	log.Info().Msg("Streaming sensor readings")

	lines := serial.NewLineReader(dev)
	for {
		line, err := lines.Next()
		if err != nil {
			if ctx.Err() != nil {
				c.setState(StateDisconnected)
				log.Info().Msg("Sensor session closed")
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				err = ErrStreamEnded
			}
			c.setState(StateErrored)
			log.Error().Err(err).Msg("Sensor device failed")
			return c.fault(err)
		}

		c.handleLine(ctx, line)
	}
}

func (c *Coordinator) handleLine(ctx context.Context, line string) {
	metrics.IngestLines.Inc()

	r, err := ParseReading(line, c.cfg.Now())
	if err != nil {
		metrics.RecordRejected(RejectReason(err))
		ev := logging.Ctx(ctx).Warn()
		if errors.Is(err, ErrMalformed) {
			ev = logging.Ctx(ctx).Debug()
		}
		ev.Err(err).Str("line", truncate(line, 120)).Msg("Discarded device line")
		return
	}

	metrics.IngestAccepted.Inc()
	c.dispatcher.Dispatch(ctx, r)
}

// fault wraps a device error so the supervisor honours the reconnect policy.
func (c *Coordinator) fault(err error) error {
	if c.cfg.Reconnect {
		return fmt.Errorf("sensor device: %w", err)
	}
	return fmt.Errorf("sensor device: %w: %w", err, suture.ErrDoNotRestart)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
