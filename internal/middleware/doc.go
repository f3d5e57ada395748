// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

/*
Package middleware provides the outer HTTP middleware of the API server.

These wrap the whole content API rather than individual routes; per-route
checks (security headers, rate limiting, input validation) are named
middleware of the internal router.

Key Components:

  - RequestID: X-Request-ID propagation and request-scoped logging
  - PrometheusMetrics: request count, latency and in-flight gauge, labeled
    by matched route pattern
  - Compression: pooled gzip for responses to clients that accept it

Typical stack, outermost first:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)

The route label is filled in by the dispatcher through SetRoute once a
route has matched; unmatched requests are recorded as "unmatched".
*/
package middleware
