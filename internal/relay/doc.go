// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

/*
Package relay forwards every broadcast reading to an external message bus.

A Relay is a broadcast.Subscriber registered in the same hub as websocket
viewers, so it receives exactly the payload viewers receive:

	{"timestamp":1780315200123,"temperature":23.5,"humidity":55.2}

Push only enqueues. A Relay's Serve loop (a suture.Service) drains the queue
and hands each payload to a Publisher:

  - MQTTPublisher publishes to a topic with eclipse/paho.mqtt.golang
  - NATSPublisher publishes to a subject with nats-io/nats.go

Broker outages never reach the dispatcher. A failed publish is logged and
counted, and a full queue drops the reading. Push only fails once the relay
has been detached.

EmbeddedServer runs an in-process NATS server for single-host installs;
the NATS relay then publishes to it and local consumers subscribe there.
*/
package relay
