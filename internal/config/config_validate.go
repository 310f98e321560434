// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/climatrace/internal/retention"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateSerial,
		c.validateDatabase,
		c.validateRetention,
		c.validateRelays,
		c.validateServer,
		c.validateSecurity,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateSerial() error {
	if c.Serial.Simulate {
		if c.Serial.SimulateInterval <= 0 {
			return fmt.Errorf("SERIAL_SIMULATE_INTERVAL must be positive, got %v", c.Serial.SimulateInterval)
		}
		return nil
	}
	if c.Serial.Device == "" {
		return fmt.Errorf("SERIAL_PORT is required unless SERIAL_SIMULATE=true")
	}
	if c.Serial.BaudRate <= 0 {
		return fmt.Errorf("SERIAL_BAUD must be positive, got %d", c.Serial.BaudRate)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateRetention() error {
	if c.Retention.HorizonDays <= 0 {
		return fmt.Errorf("RETENTION_DAYS must be positive, got %d", c.Retention.HorizonDays)
	}
	if _, err := retention.ParseCron(c.Retention.Schedule); err != nil {
		return fmt.Errorf("RETENTION_SCHEDULE: %w", err)
	}
	if _, err := c.Retention.Location(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRelays() error {
	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			return fmt.Errorf("MQTT_BROKER is required when MQTT_ENABLED=true")
		}
		if c.MQTT.Topic == "" {
			return fmt.Errorf("MQTT_TOPIC is required when MQTT_ENABLED=true")
		}
		if c.MQTT.QoS > 2 {
			return fmt.Errorf("MQTT_QOS must be 0, 1 or 2, got %d", c.MQTT.QoS)
		}
	}
	if c.NATS.Enabled {
		if c.NATS.Embedded && (c.NATS.EmbeddedPort < 0 || c.NATS.EmbeddedPort > 65535) {
			return fmt.Errorf("NATS_EMBEDDED_PORT must be between 0 and 65535, got %d", c.NATS.EmbeddedPort)
		}
		if !c.NATS.Embedded && c.NATS.URL == "" {
			return fmt.Errorf("NATS_URL is required when NATS_ENABLED=true")
		}
		if c.NATS.Subject == "" {
			return fmt.Errorf("NATS_SUBJECT is required when NATS_ENABLED=true")
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Security.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
