// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package relay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/climatrace/internal/broadcast"
	"github.com/tomtom215/climatrace/internal/logging"
	"github.com/tomtom215/climatrace/internal/metrics"
)

const (
	// DefaultQueueSize bounds readings waiting for the broker.
	DefaultQueueSize = 1024

	// DefaultPublishTimeout bounds a single publish.
	DefaultPublishTimeout = 5 * time.Second
)

var (
	// ErrRelayClosed is returned by Push after the relay was detached.
	ErrRelayClosed = errors.New("relay: closed")

	// ErrQueueFull is recorded when a reading is dropped.
	ErrQueueFull = errors.New("relay: queue full")
)

// Publisher delivers one payload to a broker.
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
	Close() error
}

// Relay is a broadcast.Subscriber that forwards payloads to a Publisher.
// It also implements suture.Service.
type Relay struct {
	id      uint64
	kind    string
	pub     Publisher
	timeout time.Duration
	log     zerolog.Logger

	mu     sync.Mutex
	queue  chan []byte
	closed bool

	closePub sync.Once
}

var _ broadcast.Subscriber = (*Relay)(nil)

// New creates a relay of the given kind ("mqtt", "nats").
func New(kind string, pub Publisher, queueSize int) *Relay {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Relay{
		id:      broadcast.NextID(),
		kind:    kind,
		pub:     pub,
		timeout: DefaultPublishTimeout,
		log:     logging.WithComponent("relay").With().Str("relay", kind).Logger(),
		queue:   make(chan []byte, queueSize),
	}
}

// ID returns the subscriber ID.
func (r *Relay) ID() uint64 { return r.id }

// Kind returns the relay kind.
func (r *Relay) Kind() string { return r.kind }

// String implements fmt.Stringer for suture logs.
func (r *Relay) String() string { return r.kind + "-relay" }

// Push enqueues payload. A full queue drops it.
func (r *Relay) Push(payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRelayClosed
	}
	select {
	case r.queue <- payload:
	default:
		metrics.RecordRelayPublish(r.kind, ErrQueueFull)
		r.log.Warn().Int("queue_size", cap(r.queue)).Msg("Relay queue full, dropping reading")
	}
	return nil
}

// Detach stops accepting payloads. Serve drains what is queued and returns.
func (r *Relay) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
}

// Close detaches the relay and closes its publisher. It is for relays that
// never reached Serve; a served relay closes the publisher itself.
func (r *Relay) Close() {
	r.Detach()
	r.shutdown()
}

// Serve publishes queued payloads until ctx ends or the relay is detached.
func (r *Relay) Serve(ctx context.Context) error {
	r.log.Info().Msg("Relay started")
	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			return ctx.Err()
		case payload, ok := <-r.queue:
			if !ok {
				r.shutdown()
				return suture.ErrDoNotRestart
			}
			r.publish(ctx, payload)
		}
	}
}

func (r *Relay) publish(ctx context.Context, payload []byte) {
	pubCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.pub.Publish(pubCtx, payload)
	metrics.RecordRelayPublish(r.kind, err)
	if err != nil {
		r.log.Warn().Err(err).Msg("Relay publish failed")
	}
}

func (r *Relay) shutdown() {
	r.closePub.Do(func() {
		if err := r.pub.Close(); err != nil {
			r.log.Warn().Err(err).Msg("Error closing relay publisher")
		}
		r.log.Info().Msg("Relay stopped")
	})
}
