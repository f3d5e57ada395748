// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

// Package metrics declares the Prometheus collectors exported on /metrics.
//
// Collectors are registered on the default registry through promauto, so
// importing the package is enough to expose them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carelink_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "carelink_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "carelink_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Middleware rejections (rate_limit, input_validation)
	MiddlewareRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carelink_middleware_rejections_total",
			Help: "Requests rejected by a named middleware",
		},
		[]string{"middleware"},
	)

	RateLimitStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carelink_rate_limit_store_errors_total",
			Help: "Rate limit storage failures (request was allowed)",
		},
		[]string{"store", "operation"},
	)

	RateLimitRecordsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carelink_rate_limit_records_swept_total",
			Help: "Expired rate limit records removed by the sweeper",
		},
	)

	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "carelink_db_query_duration_seconds",
			Help:    "Duration of content database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carelink_db_query_errors_total",
			Help: "Queries that failed and were answered with an empty result",
		},
		[]string{"backend", "reason"},
	)

	DBConnectAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carelink_db_connect_attempts_total",
			Help: "Backend connection attempts by outcome",
		},
		[]string{"backend", "outcome"},
	)

	// DBActiveBackend is 1 for the backend currently serving queries
	// ("none" while degraded) and 0 for the others.
	DBActiveBackend = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "carelink_db_active_backend",
			Help: "Currently active database backend",
		},
		[]string{"backend"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "carelink_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carelink_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "carelink_app_info",
			Help: "Build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordAPIRequest records one served request.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

// RecordRejection counts a request vetoed by the named middleware.
func RecordRejection(middleware string) {
	MiddlewareRejections.WithLabelValues(middleware).Inc()
}

// RecordDBQuery records a query against a backend. A non-nil err is
// classified into a short reason label.
func RecordDBQuery(backend string, duration time.Duration, err error, reason string) {
	DBQueryDuration.WithLabelValues(backend).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(backend, reason).Inc()
	}
}

// SetActiveBackend marks exactly one backend label as active.
func SetActiveBackend(active string, all ...string) {
	for _, b := range all {
		v := 0.0
		if b == active {
			v = 1
		}
		DBActiveBackend.WithLabelValues(b).Set(v)
	}
}
