// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package config

import (
	"fmt"
	"time"
)

// Config is the complete application configuration.
type Config struct {
	Serial     SerialConfig     `koanf:"serial"`
	Database   DatabaseConfig   `koanf:"database"`
	Retention  RetentionConfig  `koanf:"retention"`
	Broadcast  BroadcastConfig  `koanf:"broadcast"`
	MQTT       MQTTConfig       `koanf:"mqtt"`
	NATS       NATSConfig       `koanf:"nats"`
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// SerialConfig describes the sensor device.
type SerialConfig struct {
	Device   string `koanf:"device"`
	BaudRate int    `koanf:"baud_rate"`

	// Simulate replaces the device with generated readings.
	Simulate         bool          `koanf:"simulate"`
	SimulateInterval time.Duration `koanf:"simulate_interval"`

	// Reconnect lets the supervisor restart ingestion after a device fault.
	// When false a device fault ends ingestion for the life of the process.
	Reconnect bool `koanf:"reconnect"`
}

// DatabaseConfig configures the DuckDB store.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = use NumCPU
}

// RetentionConfig configures the scheduled purge.
type RetentionConfig struct {
	HorizonDays  int    `koanf:"horizon_days"`
	Schedule     string `koanf:"schedule"` // 5-field cron expression
	Timezone     string `koanf:"timezone"` // IANA name, empty = server local time
	RunOnStartup bool   `koanf:"run_on_startup"`
}

// Location resolves Timezone. An empty Timezone means time.Local.
func (r RetentionConfig) Location() (*time.Location, error) {
	if r.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid retention timezone %q: %w", r.Timezone, err)
	}
	return loc, nil
}

// BroadcastConfig configures the persist-then-push dispatcher.
type BroadcastConfig struct {
	// RequirePersistence suppresses the broadcast of readings that failed to persist.
	RequirePersistence bool          `koanf:"require_persistence"`
	BreakerFailures    uint32        `koanf:"breaker_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// MQTTConfig configures the optional MQTT relay.
type MQTTConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Broker   string `koanf:"broker"`
	Topic    string `koanf:"topic"`
	ClientID string `koanf:"client_id"`
	QoS      byte   `koanf:"qos"`
	Retained bool   `koanf:"retained"`
}

// NATSConfig configures the optional NATS relay.
type NATSConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url"`
	Subject string `koanf:"subject"`

	// Embedded starts an in-process NATS server and relays to it instead of URL.
	Embedded     bool   `koanf:"embedded"`
	EmbeddedHost string `koanf:"embedded_host"`
	EmbeddedPort int    `koanf:"embedded_port"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig configures CORS and request rate limiting.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SupervisorConfig configures the suture tree.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// Load reads configuration from defaults, file and environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
