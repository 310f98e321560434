// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

/*
Package websocket holds the live subscriber registry and the websocket client.

Hub is the registry every broadcast goes through. It stores any
broadcast.Subscriber (websocket clients and the MQTT and NATS relays) in a
mutex-guarded map keyed by subscriber ID:

	Register(sub)      add a subscriber
	Unregister(sub)    remove it; a second call is a no-op
	ForEachOpen(fn)    call fn for each subscriber, in ID order, over a snapshot

ForEachOpen copies the set under a read lock and calls fn without holding
it, so a push that fails can Unregister its subscriber from inside fn and a
client that disconnects mid-broadcast never invalidates the iteration.

Each Client has two goroutines:

  - readPump reads (and discards) inbound frames, answers pings and
    unregisters the client when the connection ends
  - writePump drains the bounded send queue and keeps the connection alive

Client.Push never blocks: a full queue means the viewer is not keeping up,
and the client is dropped rather than stalling the pipeline.

RunWithContext ties the hub to the supervisor. When its context ends every
subscriber is detached and websocket connections are closed.
*/
package websocket
