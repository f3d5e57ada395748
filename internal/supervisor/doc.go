// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

/*
Package supervisor provides process supervision for CareLink using suture v4.

The tree has two layers so that background upkeep can fail and restart
without touching request serving:

	RootSupervisor ("carelink")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   └── rate-limit-sweeper (ratelimit.Sweeper)
	└── APISupervisor ("api-layer")
	    └── http-server (services.HTTPServerService)

Supervisor events (service start, failure, backoff) are logged through
sutureslog, which is fed the zerolog-backed slog logger from
internal/logging.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
	    return err
	}
	tree.AddMaintenanceService(ratelimit.NewSweeper(limiter, 0))
	tree.AddAPIService(services.NewHTTPServerService(httpServer, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

A service that returns (or panics) is restarted with backoff once its
failure count exceeds FailureThreshold. Returning ctx.Err() on shutdown is
the expected way to stop.
*/
package supervisor
