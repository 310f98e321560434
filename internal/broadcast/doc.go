// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

// Package broadcast persists each reading and fans it out to subscribers.
//
// For every reading the Dispatcher:
//
//  1. inserts it into the Store, through a circuit breaker
//  2. encodes it once as a models.ReadingMessage
//  3. pushes the encoded bytes to every subscriber the Registry holds
//
// A persistence failure is logged and counted but does not stop the
// broadcast, unless Config.RequirePersistence is set. Every push runs in its
// own failure boundary: an error or panic from one subscriber removes that
// subscriber from the registry and never reaches the caller or the other
// subscribers.
//
// Subscribers are anything that can take a pushed payload: websocket
// clients and the MQTT and NATS relays all implement Subscriber.
package broadcast
