// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/climatrace/internal/api"
	"github.com/tomtom215/climatrace/internal/broadcast"
	"github.com/tomtom215/climatrace/internal/config"
	"github.com/tomtom215/climatrace/internal/database"
	"github.com/tomtom215/climatrace/internal/ingest"
	"github.com/tomtom215/climatrace/internal/logging"
	"github.com/tomtom215/climatrace/internal/retention"
	"github.com/tomtom215/climatrace/internal/serial"
	"github.com/tomtom215/climatrace/internal/supervisor"
	"github.com/tomtom215/climatrace/internal/supervisor/services"
	ws "github.com/tomtom215/climatrace/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().Msg("Starting Climatrace with supervisor tree")

	serialCfg := serial.Config{
		Device:           cfg.Serial.Device,
		BaudRate:         cfg.Serial.BaudRate,
		Simulate:         cfg.Serial.Simulate,
		SimulateInterval: cfg.Serial.SimulateInterval,
	}

	logging.Info().
		Str("device", serialCfg.Describe()).
		Bool("reconnect", cfg.Serial.Reconnect).
		Str("db_path", cfg.Database.Path).
		Int("retention_days", cfg.Retention.HorizonDays).
		Msg("Configuration loaded")

	loc, err := cfg.Retention.Location()
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid retention timezone")
	}

	db, err := database.New(&cfg.Database, database.WithLocation(loc))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg.Supervisor))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	hub := ws.NewHub()
	tree.AddMessagingService(services.NewHubService(hub))

	dispatchCfg := broadcast.DefaultConfig()
	dispatchCfg.RequirePersistence = cfg.Broadcast.RequirePersistence
	dispatchCfg.BreakerFailures = cfg.Broadcast.BreakerFailures
	dispatchCfg.BreakerTimeout = cfg.Broadcast.BreakerTimeout
	dispatcher := broadcast.NewDispatcher(db, hub, dispatchCfg)

	relays, err := buildRelays(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize relays")
	}
	relays.attach(tree, hub, cfg.Supervisor.ShutdownTimeout)

	coordinator := ingest.NewCoordinator(
		func() (io.ReadCloser, error) { return serial.Open(serialCfg) },
		dispatcher,
		ingest.CoordinatorConfig{
			Source:    serialCfg.Describe(),
			Reconnect: cfg.Serial.Reconnect,
		},
	)
	tree.AddIngestService(coordinator)

	handler := api.NewHandler(db, hub, coordinator, ws.NewUpgrader(cfg.Security.CORSOrigins))

	sweeper, err := retention.NewSweeper(db, retention.Config{
		Schedule:     cfg.Retention.Schedule,
		HorizonDays:  cfg.Retention.HorizonDays,
		Location:     loc,
		RunOnStartup: cfg.Retention.RunOnStartup,
		OnPurge:      func(int64) { handler.InvalidateReports() },
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create retention sweeper")
	}
	tree.AddIngestService(sweeper)
	logging.Info().
		Str("schedule", cfg.Retention.Schedule).
		Time("next_run", sweeper.NextRun()).
		Msg("Retention sweeper scheduled")

	router := api.NewRouter(handler, api.NewChiMiddleware(api.NewChiMiddlewareConfig(cfg.Security)))

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (RATE_LIMIT_DISABLED=true)")
	}

	// No WriteTimeout: it would cut long-lived websocket connections.
	server := &http.Server{
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       2 * time.Minute,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Addr(), cfg.Supervisor.ShutdownTimeout))
	logging.Info().Str("addr", cfg.Server.Addr()).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	tree.LogUnstopped()
	logging.Info().Msg("Application stopped gracefully")
}
