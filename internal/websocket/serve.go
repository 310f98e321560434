// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/climatrace/internal/logging"
)

// NewUpgrader returns an upgrader that accepts the given browser origins.
// "*" accepts any origin, including requests without an Origin header.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowAny := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAny = true
		}
		allowed[o] = struct{}{}
	}

	return &websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin: func(r *http.Request) bool {
			if allowAny {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
				return false
			}
			if _, ok := allowed[origin]; ok {
				return true
			}
			logging.Warn().Str("origin", origin).Msg("WebSocket connection rejected: origin not allowed")
			return false
		},
	}
}

// ServeWS upgrades the request and registers the new client with hub.
// The upgrader writes the HTTP error response when the handshake fails.
func ServeWS(hub *Hub, upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Debug().Err(err).Str("remote_addr", r.RemoteAddr).Msg("WebSocket upgrade failed")
		return
	}
	NewClient(hub, conn).Start()
}
