// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/carelink/internal/api"
	"github.com/tomtom215/carelink/internal/config"
	"github.com/tomtom215/carelink/internal/database"
	"github.com/tomtom215/carelink/internal/logging"
	"github.com/tomtom215/carelink/internal/metrics"
	"github.com/tomtom215/carelink/internal/ratelimit"
	"github.com/tomtom215/carelink/internal/supervisor"
	"github.com/tomtom215/carelink/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
		Output: os.Stderr,
	})
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().
		Str("version", version).
		Str("db_addr", cfg.Database.Addr()).
		Strs("db_backends", cfg.Database.Backends).
		Bool("debug", cfg.App.Debug).
		Msg("Starting CareLink API")

	// === DATABASE ===

	backends, err := database.NewBackends(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid database backend configuration")
	}
	db := database.NewManager(cfg.Database, backends...)
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout*time.Duration(len(backends)+1))
	kind := db.Connect(connectCtx)
	cancelConnect()
	if kind == database.KindNone {
		// Not fatal: endpoints answer with empty results until a backend returns.
		logging.Warn().Err(db.LastError()).Msg("Starting without a database connection")
	} else {
		logging.Info().Str("backend", string(kind)).Msg("Database connected")
	}

	// === RATE LIMITER ===

	store, err := openLimiterStore(cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open rate limit store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing rate limit store")
		}
	}()
	limiter := ratelimit.New(store, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow)
	logging.Info().
		Str("store", store.Name()).
		Int("limit", limiter.Limit()).
		Dur("window", limiter.Window()).
		Bool("disabled", cfg.Security.RateLimitDisabled).
		Msg("Rate limiter ready")

	// === HTTP ===

	srv, err := api.NewServer(cfg, api.NewRouter(), api.Deps{Store: db, Limiter: limiter})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build API server")
	}
	for _, rt := range srv.Router().Routes() {
		logging.Debug().Str("method", rt.Method).Str("pattern", rt.Pattern).Strs("middleware", rt.Middleware).Msg("Route registered")
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           srv.Handler(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// === SUPERVISOR TREE ===

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	if !cfg.Security.RateLimitDisabled {
		tree.AddMaintenanceService(ratelimit.NewSweeper(limiter, 0))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport() //nolint:errcheck // report only
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	logging.Info().Msg("CareLink API stopped")
}

// openLimiterStore opens the configured rate-limit record store.
// With limiting disabled nothing is recorded, so no files are created.
func openLimiterStore(cfg config.SecurityConfig) (ratelimit.Store, error) {
	if cfg.RateLimitDisabled {
		return ratelimit.NewMemoryStore(), nil
	}
	switch cfg.RateLimitStore {
	case config.StoreFile:
		return ratelimit.NewFileStore(cfg.RateLimitDir)
	case config.StoreBadger:
		// Every record is rewritten on use, so a TTL of one window only
		// expires records that no longer affect a decision.
		return ratelimit.OpenBadgerStore(cfg.RateLimitDir, cfg.RateLimitWindow)
	case config.StoreMemory:
		return ratelimit.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown rate limit store %q", cfg.RateLimitStore)
	}
}
