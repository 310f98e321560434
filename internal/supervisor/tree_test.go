// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/climatrace/internal/config"
)

// mockService implements suture.Service with controllable failures.
type mockService struct {
	name       string
	startCount atomic.Int32
	failCount  atomic.Int32

	mu       sync.Mutex
	maxFails int32
	err      error
}

func newMockService(name string) *mockService {
	return &mockService{name: name}
}

func (m *mockService) Serve(ctx context.Context) error {
	m.startCount.Add(1)

	m.mu.Lock()
	err := m.err
	maxFails := m.maxFails
	m.mu.Unlock()

	if maxFails > 0 && m.failCount.Add(1) <= maxFails {
		return errors.New("simulated failure")
	}
	if err != nil {
		return err
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) setError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *mockService) setFailCount(n int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxFails = n
}

func (m *mockService) String() string { return m.name }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func waitForStarts(t *testing.T, svc *mockService, n int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for svc.startCount.Load() < n {
		if time.Now().After(deadline) {
			t.Fatalf("%s started %d times, want >= %d", svc.name, svc.startCount.Load(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSupervisorTreeConstruction(t *testing.T) {
	t.Run("applies default values for zero config", func(t *testing.T) {
		tree, err := NewSupervisorTree(testLogger(), TreeConfig{})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		if tree.Root() == nil {
			t.Fatal("root supervisor should not be nil")
		}
		if tree.config != DefaultTreeConfig() {
			t.Errorf("config = %+v, want defaults", tree.config)
		}
	})

	t.Run("nil logger falls back to slog default", func(t *testing.T) {
		tree, err := NewSupervisorTree(nil, TreeConfig{})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		if tree.logger == nil {
			t.Error("logger should not be nil")
		}
	})

	t.Run("converts config section", func(t *testing.T) {
		got := TreeConfigFrom(config.SupervisorConfig{
			FailureThreshold: 3,
			FailureDecay:     10,
			FailureBackoff:   time.Second,
			ShutdownTimeout:  2 * time.Second,
		})
		want := TreeConfig{FailureThreshold: 3, FailureDecay: 10, FailureBackoff: time.Second, ShutdownTimeout: 2 * time.Second}
		if got != want {
			t.Errorf("TreeConfigFrom = %+v, want %+v", got, want)
		}
	})
}

func TestSupervisorTreeLayers(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})

	ingestSvc := newMockService("ingest")
	msgSvc := newMockService("messaging")
	apiSvc := newMockService("api")
	tree.AddIngestService(ingestSvc)
	tree.AddMessagingService(msgSvc)
	tree.AddAPIService(apiSvc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	for _, svc := range []*mockService{ingestSvc, msgSvc, apiSvc} {
		waitForStarts(t, svc, 1)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down in time")
	}
}

func TestSupervisorTreeFailureHandling(t *testing.T) {
	t.Run("failing ingest service is restarted without touching api", func(t *testing.T) {
		tree, _ := NewSupervisorTree(testLogger(), TreeConfig{
			FailureThreshold: 10,
			FailureBackoff:   10 * time.Millisecond,
			ShutdownTimeout:  time.Second,
		})

		failing := newMockService("failing")
		failing.setFailCount(2)
		stable := newMockService("stable")

		tree.AddIngestService(failing)
		tree.AddAPIService(stable)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		tree.ServeBackground(ctx)

		waitForStarts(t, failing, 3)
		if stable.startCount.Load() != 1 {
			t.Errorf("stable service started %d times, want 1", stable.startCount.Load())
		}
	})

	t.Run("ErrDoNotRestart is honoured", func(t *testing.T) {
		tree, _ := NewSupervisorTree(testLogger(), TreeConfig{
			FailureBackoff:  10 * time.Millisecond,
			ShutdownTimeout: time.Second,
		})

		done := newMockService("done")
		done.setError(fmt.Errorf("device gone: %w", suture.ErrDoNotRestart))
		tree.AddIngestService(done)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		tree.ServeBackground(ctx)

		waitForStarts(t, done, 1)
		time.Sleep(100 * time.Millisecond)
		if n := done.startCount.Load(); n != 1 {
			t.Errorf("service started %d times, want 1", n)
		}
	})
}

func TestSupervisorTreeRemoveMessagingService(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})

	svc := newMockService("relay")
	token := tree.AddMessagingService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tree.ServeBackground(ctx)
	waitForStarts(t, svc, 1)

	if err := tree.RemoveMessagingService(token); err != nil {
		t.Errorf("RemoveMessagingService: %v", err)
	}

	tree.LogUnstopped()
}
