// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/climatrace/internal/broadcast"
	"github.com/tomtom215/climatrace/internal/logging"
	"github.com/tomtom215/climatrace/internal/metrics"
)

// ShutdownReason identifies why the hub stopped.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Hub is the registry of live subscribers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint64]broadcast.Subscriber
}

var _ broadcast.Registry = (*Hub)(nil)

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[uint64]broadcast.Subscriber)}
}

// Register adds sub. Registering the same subscriber twice is a no-op.
func (h *Hub) Register(sub broadcast.Subscriber) {
	h.mu.Lock()
	if _, ok := h.subscribers[sub.ID()]; ok {
		h.mu.Unlock()
		return
	}
	h.subscribers[sub.ID()] = sub
	total := len(h.subscribers)
	h.mu.Unlock()

	metrics.Subscribers.WithLabelValues(sub.Kind()).Inc()
	logging.Info().
		Uint64("subscriber_id", sub.ID()).
		Str("kind", sub.Kind()).
		Int("total_subscribers", total).
		Msg("Subscriber registered")
}

// Unregister removes sub and detaches it. Absent subscribers are ignored,
// so Detach runs at most once per subscriber.
func (h *Hub) Unregister(sub broadcast.Subscriber) {
	h.mu.Lock()
	if _, ok := h.subscribers[sub.ID()]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.subscribers, sub.ID())
	total := len(h.subscribers)
	h.mu.Unlock()

	sub.Detach()
	metrics.Subscribers.WithLabelValues(sub.Kind()).Dec()
	logging.Info().
		Uint64("subscriber_id", sub.ID()).
		Str("kind", sub.Kind()).
		Int("total_subscribers", total).
		Msg("Subscriber unregistered")
}

// ForEachOpen calls fn for every registered subscriber in ID order. The
// set is snapshotted first; fn may Register or Unregister.
func (h *Hub) ForEachOpen(fn func(sub broadcast.Subscriber)) {
	for _, sub := range h.snapshot() {
		fn(sub)
	}
}

// GetClientCount returns the number of registered subscribers.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// CountByKind returns the number of registered subscribers of one kind.
func (h *Hub) CountByKind(kind string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, s := range h.subscribers {
		if s.Kind() == kind {
			n++
		}
	}
	return n
}

func (h *Hub) snapshot() []broadcast.Subscriber {
	h.mu.RLock()
	subs := make([]broadcast.Subscriber, 0, len(h.subscribers))
	for _, s := range h.subscribers {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	sort.Slice(subs, func(i, j int) bool { return subs[i].ID() < subs[j].ID() })
	return subs
}

// RunWithContext blocks until ctx ends, then detaches every subscriber.
// It is the hub's supervised lifecycle.
func (h *Hub) RunWithContext(ctx context.Context) error {
	<-ctx.Done()

	closed := h.closeAll()
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("subscribers_closed", closed).
		Msg("Subscriber hub stopped")
	return ctx.Err()
}

func (h *Hub) closeAll() int {
	subs := h.snapshot()
	for _, s := range subs {
		h.Unregister(s)
	}
	return len(subs)
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}
