// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thejerf/suture/v4"
)

// EmbeddedNATS is satisfied by *relay.EmbeddedServer.
type EmbeddedNATS interface {
	Running() bool
	Shutdown(ctx context.Context) error
}

// ErrNATSServerStopped is returned when the embedded server is found dead.
var ErrNATSServerStopped = errors.New("embedded NATS server is not running")

// NATSServerService owns the embedded NATS server's shutdown.
//
// The server is started before the tree so relays can connect during
// startup. It cannot be restarted in place, so a dead server is reported
// with suture.ErrDoNotRestart.
type NATSServerService struct {
	server          EmbeddedNATS
	checkInterval   time.Duration
	shutdownTimeout time.Duration
	name            string
}

// NewNATSServerService wraps server.
func NewNATSServerService(server EmbeddedNATS, shutdownTimeout time.Duration) *NATSServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &NATSServerService{
		server:          server,
		checkInterval:   5 * time.Second,
		shutdownTimeout: shutdownTimeout,
		name:            "nats-server",
	}
}

// Serve implements suture.Service.
func (s *NATSServerService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
			defer cancel()
			if err := s.server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("embedded NATS shutdown: %w", err)
			}
			return ctx.Err()

		case <-ticker.C:
			if !s.server.Running() {
				return fmt.Errorf("%w: %w", ErrNATSServerStopped, suture.ErrDoNotRestart)
			}
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (s *NATSServerService) String() string {
	return s.name
}
