// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/climatrace/config.yaml",
	"/etc/climatrace/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// sliceConfigPaths are koanf paths that accept comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Sensor device
	"serial_port":              "serial.device",
	"serial_baud":              "serial.baud_rate",
	"serial_simulate":          "serial.simulate",
	"serial_simulate_interval": "serial.simulate_interval",
	"serial_reconnect":         "serial.reconnect",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Retention
	"retention_days":           "retention.horizon_days",
	"retention_schedule":       "retention.schedule",
	"retention_timezone":       "retention.timezone",
	"retention_run_on_startup": "retention.run_on_startup",

	// Broadcast
	"broadcast_require_persistence": "broadcast.require_persistence",
	"broadcast_breaker_failures":    "broadcast.breaker_failures",
	"broadcast_breaker_timeout":     "broadcast.breaker_timeout",

	// Relays
	"mqtt_enabled":   "mqtt.enabled",
	"mqtt_broker":    "mqtt.broker",
	"mqtt_topic":     "mqtt.topic",
	"mqtt_client_id": "mqtt.client_id",
	"mqtt_qos":       "mqtt.qos",
	"mqtt_retained":  "mqtt.retained",
	"nats_enabled":   "nats.enabled",
	"nats_url":       "nats.url",
	"nats_subject":   "nats.subject",

	"nats_embedded":      "nats.embedded",
	"nats_embedded_host": "nats.embedded_host",
	"nats_embedded_port": "nats.embedded_port",

	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Supervisor
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// defaultConfig returns the built-in defaults, applied before file and env.
func defaultConfig() *Config {
	return &Config{
		Serial: SerialConfig{
			Device:           "/dev/ttyACM0",
			BaudRate:         9600,
			SimulateInterval: 2 * time.Second,
		},
		Database: DatabaseConfig{
			Path:      "/data/climatrace.duckdb",
			MaxMemory: "512MB",
		},
		Retention: RetentionConfig{
			HorizonDays: 30,
			Schedule:    "0 0 * * *",
		},
		Broadcast: BroadcastConfig{
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		MQTT: MQTTConfig{
			Broker:   "tcp://localhost:1883",
			Topic:    "climatrace/readings",
			ClientID: "climatrace",
		},
		NATS: NATSConfig{
			URL:          "nats://127.0.0.1:4222",
			Subject:      "climatrace.readings",
			EmbeddedHost: "127.0.0.1",
			EmbeddedPort: 4222,
		},
		Server: ServerConfig{
			Port:    3000,
			Host:    "0.0.0.0",
			Timeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// LoadWithKoanf builds the layered configuration.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransformFunc returns "" for unmapped variables so koanf skips them.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// processSliceFields splits comma-separated env values into string slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok || raw == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			continue
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
