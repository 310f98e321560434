// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/climatrace/internal/logging"
	"github.com/tomtom215/climatrace/internal/models"
)

const defaultReportDays = 30

// Readings handles GET /api/data.
func (h *Handler) Readings(w http.ResponseWriter, r *http.Request) {
	var req ReadingsRequest
	var err error

	for _, p := range []struct {
		key  string
		dest **int64
	}{{"start", &req.Start}, {"end", &req.End}} {
		if *p.dest, err = getEpochMillisParam(r, p.key); err != nil {
			respondAPIError(w, http.StatusBadRequest, &models.APIError{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
				Details: map[string]interface{}{"field": p.key, "tag": "integer"},
			}, nil)
			return
		}
	}
	req.Limit = getIntParam(r, "limit", 0)
	req.Offset = getIntParam(r, "offset", 0)

	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr, nil)
		return
	}

	readings, err := h.store.RangeQuery(r.Context(),
		time.UnixMilli(*req.Start), time.UnixMilli(*req.End), req.Limit, req.Offset)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Range query failed")
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query readings", err)
		return
	}

	out := make([]models.ReadingMessage, len(readings))
	for i, rd := range readings {
		out[i] = rd.Message()
	}
	writeJSON(w, http.StatusOK, out)
}

// InvalidateReports drops cached daily reports. The retention sweeper calls
// it after a purge removes rows.
func (h *Handler) InvalidateReports() {
	h.reports.Clear()
}

// DailyReport handles GET /api/reports/daily.
func (h *Handler) DailyReport(w http.ResponseWriter, r *http.Request) {
	key := "daily:" + strconv.Itoa(h.reportDays)
	if report, ok := h.reports.Get(key); ok {
		writeJSON(w, http.StatusOK, report)
		return
	}

	report, err := h.store.DailyAggregate(r.Context(), h.reportDays)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Daily report query failed")
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to build daily report", err)
		return
	}
	if report == nil {
		report = []models.DailyAggregate{}
	}
	h.reports.Set(key, report)
	writeJSON(w, http.StatusOK, report)
}
