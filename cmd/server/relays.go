// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/climatrace/internal/config"
	"github.com/tomtom215/climatrace/internal/logging"
	"github.com/tomtom215/climatrace/internal/relay"
	"github.com/tomtom215/climatrace/internal/supervisor"
	"github.com/tomtom215/climatrace/internal/supervisor/services"
	ws "github.com/tomtom215/climatrace/internal/websocket"
)

// relaySet holds the enabled relays and, with NATS_EMBEDDED, the server
// the NATS relay publishes to.
type relaySet struct {
	relays   []*relay.Relay
	embedded *relay.EmbeddedServer
}

// buildRelays connects every enabled relay. On error anything already
// started is torn down.
func buildRelays(cfg *config.Config) (_ *relaySet, err error) {
	set := &relaySet{}
	defer func() {
		if err != nil {
			set.close()
		}
	}()

	if cfg.MQTT.Enabled {
		pub, err := relay.NewMQTTPublisher(relay.MQTTConfig{
			Broker:   cfg.MQTT.Broker,
			Topic:    cfg.MQTT.Topic,
			ClientID: cfg.MQTT.ClientID,
			QoS:      cfg.MQTT.QoS,
			Retained: cfg.MQTT.Retained,
		})
		if err != nil {
			return nil, fmt.Errorf("mqtt relay: %w", err)
		}
		set.relays = append(set.relays, relay.New(relay.KindMQTT, pub, relay.DefaultQueueSize))
		logging.Info().Str("broker", cfg.MQTT.Broker).Str("topic", cfg.MQTT.Topic).Msg("MQTT relay enabled")
	}

	if cfg.NATS.Enabled {
		url := cfg.NATS.URL
		if cfg.NATS.Embedded {
			set.embedded, err = relay.NewEmbeddedServer(cfg.NATS.EmbeddedHost, cfg.NATS.EmbeddedPort)
			if err != nil {
				return nil, fmt.Errorf("embedded nats server: %w", err)
			}
			url = set.embedded.ClientURL()
			logging.Info().Str("url", url).Msg("Embedded NATS server started")
		}

		pub, err := relay.NewNATSPublisher(url, cfg.NATS.Subject)
		if err != nil {
			return nil, fmt.Errorf("nats relay: %w", err)
		}
		set.relays = append(set.relays, relay.New(relay.KindNATS, pub, relay.DefaultQueueSize))
		logging.Info().Str("url", url).Str("subject", cfg.NATS.Subject).Msg("NATS relay enabled")
	}

	return set, nil
}

// attach registers every relay as a hub subscriber and supervises it.
func (s *relaySet) attach(tree *supervisor.SupervisorTree, hub *ws.Hub, shutdownTimeout time.Duration) {
	if s.embedded != nil {
		tree.AddMessagingService(services.NewNATSServerService(s.embedded, shutdownTimeout))
	}
	for _, r := range s.relays {
		hub.Register(r)
		tree.AddMessagingService(r)
	}
}

func (s *relaySet) close() {
	for _, r := range s.relays {
		r.Close()
	}
	if s.embedded != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.embedded.Shutdown(ctx); err != nil {
			logging.Warn().Err(err).Msg("Failed to stop embedded NATS server")
		}
	}
}
