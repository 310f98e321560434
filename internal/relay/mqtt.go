// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/tomtom215/climatrace/internal/logging"
)

// KindMQTT is the Subscriber kind of the MQTT relay.
const KindMQTT = "mqtt"

const mqttConnectWait = 10 * time.Second

// ErrPublishTimeout is returned when the broker does not acknowledge in time.
var ErrPublishTimeout = errors.New("relay: publish timed out")

// MQTTConfig configures an MQTTPublisher.
type MQTTConfig struct {
	Broker   string
	Topic    string
	ClientID string
	QoS      byte
	Retained bool
}

// MQTTPublisher publishes readings to one MQTT topic.
type MQTTPublisher struct {
	client   mqtt.Client
	topic    string
	qos      byte
	retained bool
}

// NewMQTTPublisher connects to the broker. The client keeps retrying in the
// background if the broker is not reachable yet.
func NewMQTTPublisher(cfg MQTTConfig) (*MQTTPublisher, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "climatrace"
	}
	// Broker sessions are keyed by client ID; two instances must not collide.
	clientID = clientID + "-" + uuid.NewString()[:8]

	log := logging.WithComponent("relay").With().Str("relay", KindMQTT).Logger()

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Info().Str("broker", cfg.Broker).Msg("Connected to MQTT broker")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", cfg.Broker).Msg("Lost connection to MQTT broker")
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectWait) {
		log.Warn().Str("broker", cfg.Broker).Msg("MQTT broker not reachable yet, retrying in background")
	} else if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to MQTT broker %s: %w", cfg.Broker, err)
	}

	return &MQTTPublisher{
		client:   client,
		topic:    cfg.Topic,
		qos:      cfg.QoS,
		retained: cfg.Retained,
	}, nil
}

// Publish sends payload and waits for the broker acknowledgement required by the QoS.
func (p *MQTTPublisher) Publish(ctx context.Context, payload []byte) error {
	token := p.client.Publish(p.topic, p.qos, p.retained, payload)

	wait := DefaultPublishTimeout
	if deadline, ok := ctx.Deadline(); ok {
		wait = time.Until(deadline)
	}
	if !token.WaitTimeout(wait) {
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	return nil
}

// Close disconnects, allowing 250ms for in-flight work.
func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
