// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package broadcast

import (
	"context"
	"sync/atomic"

	"github.com/tomtom215/climatrace/internal/models"
)

// Subscriber receives every broadcast reading.
type Subscriber interface {
	// ID is unique among live subscribers.
	ID() uint64

	// Kind names the transport for logs and metrics ("websocket", "mqtt", "nats").
	Kind() string

	// Push delivers one encoded reading. It must not block on the network;
	// an error means the subscriber is no longer usable. Push must not modify payload.
	Push(payload []byte) error

	// Detach is called once by the registry when it drops the subscriber.
	Detach()
}

// Registry is the set of live subscribers.
//
// ForEachOpen iterates over a snapshot, so fn may call Register or
// Unregister. Unregister of an absent subscriber is a no-op.
type Registry interface {
	Register(sub Subscriber)
	Unregister(sub Subscriber)
	ForEachOpen(fn func(sub Subscriber))
}

// Store persists readings.
type Store interface {
	InsertReading(ctx context.Context, r models.Reading) error
}

var subscriberIDs atomic.Uint64

// NextID returns a process-unique, increasing subscriber ID.
func NextID() uint64 {
	return subscriberIDs.Add(1)
}
