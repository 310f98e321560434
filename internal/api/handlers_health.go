// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/climatrace/internal/ingest"
	"github.com/tomtom215/climatrace/internal/models"
	ws "github.com/tomtom215/climatrace/internal/websocket"
)

// HealthLive returns 200 while the process is running.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// HealthReady returns 503 when the database is unreachable. A device that is
// not streaming reports "degraded" but stays ready, since history can
// still be served.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	health := models.HealthStatus{
		Status:      "ready",
		DatabaseOK:  h.store != nil && h.store.Ping(ctx) == nil,
		IngestState: ingest.StateDisconnected.String(),
	}
	if h.ingest != nil {
		health.IngestState = h.ingest.State().String()
	}
	if h.hub != nil {
		health.Subscribers = h.hub.GetClientCount()
		health.Viewers = h.hub.CountByKind(ws.KindWebSocket)
	}
	stats := h.reports.GetStats()
	health.ReportCache = models.CacheStatus{
		Hits:    stats.Hits,
		Misses:  stats.Misses,
		HitRate: h.reports.HitRate(),
	}
	if health.DatabaseOK {
		if n, err := h.store.CountReadings(ctx); err == nil {
			health.StoredReadings = n
		}
	}

	status := http.StatusOK
	switch {
	case !health.DatabaseOK:
		health.Status = "not_ready"
		status = http.StatusServiceUnavailable
	case health.IngestState != ingest.StateStreaming.String():
		health.Status = "degraded"
	}

	respondJSON(w, status, &models.APIResponse{
		Status: health.Status,
		Data:   health,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}
