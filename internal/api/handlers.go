// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package api

import (
	"context"
	"net/http"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/tomtom215/climatrace/internal/cache"
	"github.com/tomtom215/climatrace/internal/ingest"
	"github.com/tomtom215/climatrace/internal/models"
	ws "github.com/tomtom215/climatrace/internal/websocket"
)

// ReadingStore is the query surface the handlers need.
type ReadingStore interface {
	RangeQuery(ctx context.Context, start, end time.Time, limit, offset int) ([]models.Reading, error)
	DailyAggregate(ctx context.Context, limitDays int) ([]models.DailyAggregate, error)
	CountReadings(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// IngestStatus reports the device session state.
type IngestStatus interface {
	State() ingest.State
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct, constructor, websocket endpoints
//   - handlers_readings.go: /api/data and /api/reports/daily
//   - handlers_health.go: liveness and readiness probes
//   - handlers_helpers.go: response and parameter helpers
type Handler struct {
	store      ReadingStore
	hub        *ws.Hub
	ingest     IngestStatus
	upgrader   *gorillaws.Upgrader
	reportDays int
	reports    *cache.Cache[[]models.DailyAggregate]
	startTime  time.Time
}

// ReportCacheTTL is how long a daily report is served from memory.
const ReportCacheTTL = 30 * time.Second

// NewHandler creates a Handler. ingestStatus may be nil when no device is attached.
func NewHandler(store ReadingStore, hub *ws.Hub, ingestStatus IngestStatus, upgrader *gorillaws.Upgrader) *Handler {
	if upgrader == nil {
		upgrader = ws.NewUpgrader([]string{"*"})
	}
	return &Handler{
		store:      store,
		hub:        hub,
		ingest:     ingestStatus,
		upgrader:   upgrader,
		reportDays: defaultReportDays,
		reports:    cache.New[[]models.DailyAggregate](ReportCacheTTL),
		startTime:  time.Now(),
	}
}

// WebSocket upgrades to the live reading feed.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	ws.ServeWS(h.hub, h.upgrader, w, r)
}

// Root serves the live feed on the site root, the address dashboards open
// with a same-origin websocket. Plain HTTP requests get 426.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	if !gorillaws.IsWebSocketUpgrade(r) {
		w.Header().Set("Upgrade", "websocket")
		respondError(w, http.StatusUpgradeRequired, "UPGRADE_REQUIRED", "Connect with a websocket client to receive live readings", nil)
		return
	}
	ws.ServeWS(h.hub, h.upgrader, w, r)
}
