// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package services

import (
	"context"
)

// ContextHub is satisfied by *websocket.Hub.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// HubService ties the subscriber registry to the tree's lifetime: on
// shutdown every subscriber is detached.
type HubService struct {
	hub  ContextHub
	name string
}

// NewHubService wraps hub.
func NewHubService(hub ContextHub) *HubService {
	return &HubService{
		hub:  hub,
		name: "subscriber-hub",
	}
}

// Serve implements suture.Service.
func (s *HubService) Serve(ctx context.Context) error {
	return s.hub.RunWithContext(ctx)
}

// String implements fmt.Stringer for suture logging.
func (s *HubService) String() string {
	return s.name
}
