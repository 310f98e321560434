// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package broadcast

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/climatrace/internal/logging"
	"github.com/tomtom215/climatrace/internal/metrics"
	"github.com/tomtom215/climatrace/internal/models"
)

const storeBreakerName = "reading-store"

// breakerStore fails inserts fast while the store keeps failing, so a
// wedged database does not add its timeout to every reading.
type breakerStore struct {
	store Store
	cb    *gobreaker.CircuitBreaker[struct{}]
}

func newBreakerStore(store Store, failures uint32, timeout time.Duration) *breakerStore {
	if failures == 0 {
		failures = 5
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(storeBreakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        storeBreakerName,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("component", "broadcast").
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
	return &breakerStore{store: store, cb: cb}
}

func (b *breakerStore) InsertReading(ctx context.Context, r models.Reading) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.store.InsertReading(ctx, r)
	})
	return err
}

func (b *breakerStore) state() gobreaker.State {
	return b.cb.State()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
