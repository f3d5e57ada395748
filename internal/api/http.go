// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/carelink/internal/middleware"
)

// Handler returns the outer chi mux. Cross-cutting concerns live here;
// every request except /metrics is handed to the Server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)

	if s.cfg.Server.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	// Everything else, including unknown paths, goes through the
	// content router so 404s keep the JSON envelope.
	r.NotFound(s.ServeHTTP)
	r.MethodNotAllowed(s.ServeHTTP)
	r.Handle("/*", s)

	return r
}
