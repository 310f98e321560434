// Climatrace - Environmental Sensor Ingestion and Live Telemetry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climatrace

/*
Package supervisor provides process supervision for Climatrace using suture v4.

Every long-running component runs as a suture.Service under one tree:

	RootSupervisor ("climatrace")
	├── IngestSupervisor ("ingest-layer")
	│   ├── ingest.Coordinator
	│   └── retention.Sweeper
	├── MessagingSupervisor ("messaging-layer")
	│   ├── HubService
	│   ├── NATSServerService (if NATS_EMBEDDED)
	│   └── relay.Relay (per enabled relay)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A device fault in the ingest layer never takes down the API, and history
stays queryable while the serial port is gone.

# Restart Semantics

Suture restarts a service whenever Serve returns, including with nil. Services
that are finished for good return an error wrapping suture.ErrDoNotRestart:
the coordinator after a device fault when reconnects are disabled, a relay
after it is detached from the hub.

# Logging

Supervisor events go through sutureslog to a *slog.Logger. Pass
logging.NewSlogLogger() so they land in the zerolog stream.

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg.Supervisor))
	tree.AddIngestService(coordinator)
	tree.AddMessagingService(services.NewHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Addr(), cfg.Supervisor.ShutdownTimeout))
	err = tree.Serve(ctx)
*/
package supervisor
