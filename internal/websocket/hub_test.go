// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package websocket

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/climatrace/internal/broadcast"
	"github.com/tomtom215/climatrace/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

type stubSubscriber struct {
	id   uint64
	kind string

	mu       sync.Mutex
	payloads [][]byte
	detached int
	pushErr  error
}

func newStubSubscriber(kind string) *stubSubscriber {
	return &stubSubscriber{id: broadcast.NextID(), kind: kind}
}

func (s *stubSubscriber) ID() uint64   { return s.id }
func (s *stubSubscriber) Kind() string { return s.kind }

func (s *stubSubscriber) Push(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pushErr != nil {
		return s.pushErr
	}
	s.payloads = append(s.payloads, p)
	return nil
}

func (s *stubSubscriber) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detached++
}

func (s *stubSubscriber) detachCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detached
}

func TestHubRegisterAndCount(t *testing.T) {
	hub := NewHub()
	a := newStubSubscriber(KindWebSocket)
	b := newStubSubscriber("mqtt")

	hub.Register(a)
	hub.Register(b)
	hub.Register(a)

	if got := hub.GetClientCount(); got != 2 {
		t.Fatalf("GetClientCount() = %d, want 2", got)
	}
	if got := hub.CountByKind(KindWebSocket); got != 1 {
		t.Errorf("CountByKind(websocket) = %d, want 1", got)
	}
	if got := hub.CountByKind("nats"); got != 0 {
		t.Errorf("CountByKind(nats) = %d, want 0", got)
	}
}

func TestHubUnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	sub := newStubSubscriber(KindWebSocket)
	hub.Register(sub)

	hub.Unregister(sub)
	hub.Unregister(sub)

	if got := hub.GetClientCount(); got != 0 {
		t.Errorf("GetClientCount() = %d, want 0", got)
	}
	if got := sub.detachCount(); got != 1 {
		t.Errorf("Detach called %d times, want 1", got)
	}
}

func TestHubUnregisterUnknown(t *testing.T) {
	hub := NewHub()
	sub := newStubSubscriber(KindWebSocket)

	hub.Unregister(sub)

	if got := sub.detachCount(); got != 0 {
		t.Errorf("Detach called %d times for a subscriber that was never registered", got)
	}
}

func TestHubForEachOpenOrder(t *testing.T) {
	hub := NewHub()
	subs := make([]*stubSubscriber, 5)
	for i := range subs {
		subs[i] = newStubSubscriber(KindWebSocket)
	}
	// Register out of order.
	for _, i := range []int{3, 0, 4, 1, 2} {
		hub.Register(subs[i])
	}

	var seen []uint64
	hub.ForEachOpen(func(s broadcast.Subscriber) {
		seen = append(seen, s.ID())
	})

	if len(seen) != len(subs) {
		t.Fatalf("visited %d subscribers, want %d", len(seen), len(subs))
	}
	for i := 1; i < len(seen); i++ {
		if seen[i-1] >= seen[i] {
			t.Errorf("ForEachOpen not in ID order: %v", seen)
			break
		}
	}
}

func TestHubForEachOpenAllowsUnregister(t *testing.T) {
	hub := NewHub()
	a := newStubSubscriber(KindWebSocket)
	b := newStubSubscriber(KindWebSocket)
	c := newStubSubscriber(KindWebSocket)
	hub.Register(a)
	hub.Register(b)
	hub.Register(c)

	visited := 0
	hub.ForEachOpen(func(s broadcast.Subscriber) {
		visited++
		hub.Unregister(s)
	})

	if visited != 3 {
		t.Errorf("visited = %d, want 3", visited)
	}
	if got := hub.GetClientCount(); got != 0 {
		t.Errorf("GetClientCount() = %d, want 0", got)
	}
}

func TestHubForEachOpenSnapshot(t *testing.T) {
	hub := NewHub()
	a := newStubSubscriber(KindWebSocket)
	hub.Register(a)

	late := newStubSubscriber(KindWebSocket)
	visited := 0
	hub.ForEachOpen(func(broadcast.Subscriber) {
		visited++
		hub.Register(late)
	})

	if visited != 1 {
		t.Errorf("visited = %d, want 1 (subscribers added during iteration are not visited)", visited)
	}
	if got := hub.GetClientCount(); got != 2 {
		t.Errorf("GetClientCount() = %d, want 2", got)
	}
}

func TestHubConcurrentAccess(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := newStubSubscriber(KindWebSocket)
			hub.Register(sub)
			hub.ForEachOpen(func(s broadcast.Subscriber) {
				_ = s.Push([]byte("x"))
			})
			hub.Unregister(sub)
		}()
	}
	wg.Wait()

	if got := hub.GetClientCount(); got != 0 {
		t.Errorf("GetClientCount() = %d, want 0", got)
	}
}

func TestHubRunWithContext(t *testing.T) {
	hub := NewHub()
	a := newStubSubscriber(KindWebSocket)
	b := newStubSubscriber("nats")
	hub.Register(a)
	hub.Register(b)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RunWithContext() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RunWithContext did not return after cancel")
	}

	if got := hub.GetClientCount(); got != 0 {
		t.Errorf("GetClientCount() = %d after shutdown, want 0", got)
	}
	if a.detachCount() != 1 || b.detachCount() != 1 {
		t.Errorf("detach counts = %d, %d; want 1, 1", a.detachCount(), b.detachCount())
	}
}

func TestGetShutdownReason(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	if got := getShutdownReason(canceled); got != ShutdownReasonContextCanceled {
		t.Errorf("getShutdownReason(canceled) = %q", got)
	}

	expired, cancel2 := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel2()
	<-expired.Done()
	if got := getShutdownReason(expired); got != ShutdownReasonContextDeadline {
		t.Errorf("getShutdownReason(expired) = %q", got)
	}
}
