// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/climatrace/internal/ingest"
	"github.com/tomtom215/climatrace/internal/logging"
	"github.com/tomtom215/climatrace/internal/models"
	ws "github.com/tomtom215/climatrace/internal/websocket"
)

func init() {
	logging.Init(logging.Config{Level: "error", Format: "json", Output: io.Discard})
}

type rangeCall struct {
	start, end    time.Time
	limit, offset int
}

// fakeStore records queries and serves canned results.
type fakeStore struct {
	mu       sync.Mutex
	readings []models.Reading
	report   []models.DailyAggregate
	count    int64
	queryErr error
	pingErr  error
	calls    []rangeCall

	reportCalls int
}

func (f *fakeStore) RangeQuery(_ context.Context, start, end time.Time, limit, offset int) ([]models.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, rangeCall{start, end, limit, offset})
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var out []models.Reading
	for _, r := range f.readings {
		if !r.Timestamp.Before(start) && !r.Timestamp.After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) DailyAggregate(_ context.Context, _ int) ([]models.DailyAggregate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reportCalls++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.report, nil
}

func (f *fakeStore) CountReadings(context.Context) (int64, error) {
	return f.count, nil
}

func (f *fakeStore) Ping(context.Context) error {
	return f.pingErr
}

type fixedIngest ingest.State

func (s fixedIngest) State() ingest.State { return ingest.State(s) }

func newTestRouter(store ReadingStore, state IngestStatus) (http.Handler, *ws.Hub) {
	hub := ws.NewHub()
	h := NewHandler(store, hub, state, nil)
	return NewRouter(h, NewChiMiddleware(nil)).SetupChi(), hub
}

func doGet(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error body %q: %v", w.Body.String(), err)
	}
	if resp.Status != "error" || resp.Error == nil {
		t.Fatalf("expected error envelope, got %s", w.Body.String())
	}
	return resp
}

func TestReadings_ValidationErrors(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(&fakeStore{}, nil)

	tests := []struct {
		name      string
		target    string
		wantField string
	}{
		{"missing both", "/api/data", ""},
		{"missing start", "/api/data?end=1000", "start"},
		{"missing end", "/api/data?start=1000", "end"},
		{"malformed start", "/api/data?start=abc&end=1000", "start"},
		{"malformed end", "/api/data?start=0&end=12.5", "end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(t, router, tt.target)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body %s", w.Code, w.Body.String())
			}
			resp := decodeError(t, w)
			if resp.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("code = %q, want VALIDATION_ERROR", resp.Error.Code)
			}
			if tt.wantField != "" && resp.Error.Details["field"] != tt.wantField {
				t.Errorf("details.field = %v, want %q", resp.Error.Details["field"], tt.wantField)
			}
		})
	}
}

func TestReadings_ReturnsBareArray(t *testing.T) {
	t.Parallel()

	base := time.UnixMilli(1_700_000_000_000).UTC()
	store := &fakeStore{readings: []models.Reading{
		{Timestamp: base.Add(2 * time.Second), Temperature: 22.0, Humidity: 40},
		{Timestamp: base.Add(time.Second), Temperature: 21.5, Humidity: 41},
		{Timestamp: base, Temperature: 21.0, Humidity: 42},
	}}
	router, _ := newTestRouter(store, nil)

	w := doGet(t, router, "/api/data?start=1700000000000&end=1700000002000&limit=10&offset=1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var got []models.ReadingMessage
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("expected JSON array, got %s: %v", w.Body.String(), err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Timestamp != 1_700_000_002_000 || got[0].Temperature != 22.0 {
		t.Errorf("first = %+v, want newest", got[0])
	}

	call := store.calls[0]
	if !call.start.Equal(base) || !call.end.Equal(base.Add(2*time.Second)) {
		t.Errorf("range = [%v, %v]", call.start, call.end)
	}
	if call.limit != 10 || call.offset != 1 {
		t.Errorf("paging = (%d, %d), want (10, 1)", call.limit, call.offset)
	}
}

func TestReadings_PagingDefaultsPassThrough(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	router, _ := newTestRouter(store, nil)

	w := doGet(t, router, "/api/data?start=0&end=10&limit=nope&offset=-4")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if c := store.calls[0]; c.limit != 0 || c.offset != -4 {
		t.Errorf("paging = (%d, %d), want store to normalise (0, -4)", c.limit, c.offset)
	}
}

func TestReadings_NegativeEpochAccepted(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	router, _ := newTestRouter(store, nil)

	w := doGet(t, router, "/api/data?start=-86400000&end=-1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}
	c := store.calls[0]
	if !c.start.Equal(time.UnixMilli(-86_400_000)) || !c.end.Equal(time.UnixMilli(-1)) {
		t.Errorf("range = [%v, %v]", c.start, c.end)
	}
}

func TestReadings_EmptyResultIsEmptyArray(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(&fakeStore{}, nil)

	// start after end yields an empty window, not an error
	w := doGet(t, router, "/api/data?start=5000&end=1000")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("body = %q, want []", body)
	}
}

func TestReadings_StoreFailure(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(&fakeStore{queryErr: errors.New("disk gone")}, nil)

	w := doGet(t, router, "/api/data?start=0&end=1")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if resp := decodeError(t, w); resp.Error.Code != "DATABASE_ERROR" {
		t.Errorf("code = %q", resp.Error.Code)
	}
	if strings.Contains(w.Body.String(), "disk gone") {
		t.Error("internal error text leaked into response")
	}
}

func TestDailyReport(t *testing.T) {
	t.Parallel()

	t.Run("rows", func(t *testing.T) {
		store := &fakeStore{report: []models.DailyAggregate{
			{Date: "2026-06-15", AvgTemperature: 21, MaxTemperature: 25, MinTemperature: 18, AvgHumidity: 50, MaxHumidity: 60, MinHumidity: 40, Samples: 10},
			{Date: "2026-06-14", AvgTemperature: 20, MaxTemperature: 22, MinTemperature: 19, AvgHumidity: 45, MaxHumidity: 47, MinHumidity: 44, Samples: 4},
		}}
		router, _ := newTestRouter(store, nil)

		w := doGet(t, router, "/api/reports/daily")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var got []models.DailyAggregate
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(got) != 2 || got[0].Date != "2026-06-15" || got[1].Samples != 4 {
			t.Errorf("report = %+v", got)
		}
		if !strings.Contains(w.Body.String(), `"avg_temperature"`) {
			t.Errorf("missing snake_case keys: %s", w.Body.String())
		}
	})

	t.Run("empty", func(t *testing.T) {
		router, _ := newTestRouter(&fakeStore{}, nil)
		w := doGet(t, router, "/api/reports/daily")
		if body := strings.TrimSpace(w.Body.String()); body != "[]" {
			t.Errorf("body = %q, want []", body)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		store := &fakeStore{queryErr: errors.New("boom")}
		router, _ := newTestRouter(store, nil)
		for i := 0; i < 2; i++ {
			if w := doGet(t, router, "/api/reports/daily"); w.Code != http.StatusInternalServerError {
				t.Errorf("status = %d, want 500", w.Code)
			}
		}
		if store.reportCalls != 2 {
			t.Errorf("failures must not be cached: %d store calls", store.reportCalls)
		}
	})

	t.Run("served from cache", func(t *testing.T) {
		store := &fakeStore{report: []models.DailyAggregate{{Date: "2026-06-15", Samples: 1}}}
		router, _ := newTestRouter(store, nil)
		first := doGet(t, router, "/api/reports/daily")
		second := doGet(t, router, "/api/reports/daily")
		if first.Body.String() != second.Body.String() {
			t.Errorf("cached body differs: %s vs %s", first.Body.String(), second.Body.String())
		}
		if store.reportCalls != 1 {
			t.Errorf("store called %d times, want 1", store.reportCalls)
		}
	})
}

func TestInvalidateReports(t *testing.T) {
	t.Parallel()

	store := &fakeStore{report: []models.DailyAggregate{{Date: "2026-06-15", Samples: 1}}}
	h := NewHandler(store, ws.NewHub(), nil, nil)
	router := NewRouter(h, NewChiMiddleware(nil)).SetupChi()

	doGet(t, router, "/api/reports/daily")
	h.InvalidateReports()
	doGet(t, router, "/api/reports/daily")

	if store.reportCalls != 2 {
		t.Errorf("store called %d times, want 2 after invalidation", store.reportCalls)
	}
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(&fakeStore{}, nil)

	w := doGet(t, router, "/api/nope")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if resp := decodeError(t, w); resp.Error.Code != "NOT_FOUND" {
		t.Errorf("code = %q", resp.Error.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/data", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", rec.Code)
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a\nb", `a\x0ab`},
		{"tab\there", `tab\x09here`},
		{"del\x7f", `del\x7f`},
	}
	for _, tt := range tests {
		if got := sanitizeLogValue(tt.in); got != tt.want {
			t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
