// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package broadcast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/climatrace/internal/logging"
	"github.com/tomtom215/climatrace/internal/metrics"
	"github.com/tomtom215/climatrace/internal/models"
)

// ErrPushPanic wraps a panic recovered from Subscriber.Push.
var ErrPushPanic = errors.New("subscriber panicked during push")

// Config tunes the Dispatcher.
type Config struct {
	// RequirePersistence skips the broadcast when the insert failed.
	RequirePersistence bool

	// BreakerFailures consecutive insert failures open the store breaker.
	BreakerFailures uint32

	// BreakerTimeout is how long the breaker stays open before a trial insert.
	BreakerTimeout time.Duration

	// PersistTimeout bounds a single insert. The insert is not cut short by
	// cancellation of the dispatch context, so a reading read just before
	// shutdown is still stored.
	PersistTimeout time.Duration
}

// DefaultConfig returns the dispatcher defaults.
func DefaultConfig() Config {
	return Config{
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
		PersistTimeout:  5 * time.Second,
	}
}

// Result reports what happened to one reading.
type Result struct {
	Persisted  bool
	PersistErr error
	Broadcast  bool
	Delivered  int
	Failed     int
}

// Dispatcher runs persist-then-push for each reading. Dispatch is not
// meant to be called concurrently; the ingestion coordinator calls it from
// a single goroutine so readings keep their line order.
type Dispatcher struct {
	store    *breakerStore
	registry Registry
	cfg      Config
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(store Store, registry Registry, cfg Config) *Dispatcher {
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = 5 * time.Second
	}
	return &Dispatcher{
		store:    newBreakerStore(store, cfg.BreakerFailures, cfg.BreakerTimeout),
		registry: registry,
		cfg:      cfg,
		log:      logging.WithComponent("broadcast"),
	}
}

// Dispatch persists r and pushes it to every registered subscriber.
func (d *Dispatcher) Dispatch(ctx context.Context, r models.Reading) Result {
	start := time.Now()
	var res Result

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.PersistTimeout)
	err := d.store.InsertReading(persistCtx, r)
	cancel()

	if err != nil {
		res.PersistErr = err
		d.log.Error().Err(err).
			Time("reading_time", r.Timestamp).
			Str("breaker", d.store.state().String()).
			Msg("Failed to persist reading")
	} else {
		res.Persisted = true
	}

	if !res.Persisted && d.cfg.RequirePersistence {
		metrics.RecordDispatch(time.Since(start), false, 0)
		return res
	}

	payload, err := json.Marshal(r.Message())
	if err != nil {
		d.log.Error().Err(err).Msg("Failed to encode reading")
		metrics.RecordDispatch(time.Since(start), res.Persisted, 0)
		return res
	}

	res.Broadcast = true
	d.registry.ForEachOpen(func(sub Subscriber) {
		if err := push(sub, payload); err != nil {
			res.Failed++
			d.log.Warn().Err(err).
				Uint64("subscriber_id", sub.ID()).
				Str("kind", sub.Kind()).
				Msg("Push failed, removing subscriber")
			metrics.RecordPushFailure(sub.Kind())
			d.registry.Unregister(sub)
			return
		}
		res.Delivered++
	})

	metrics.RecordDispatch(time.Since(start), res.Persisted, res.Delivered)
	return res
}

// push calls sub.Push, converting a panic into an error.
func push(sub Subscriber, payload []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPushPanic, r)
		}
	}()
	return sub.Push(payload)
}
