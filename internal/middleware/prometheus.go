// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/carelink/internal/metrics"
)

type routeKey struct{}

// routeLabel is filled in by SetRoute while the request is served.
type routeLabel struct {
	pattern string
}

const unmatchedRoute = "unmatched"

// SetRoute records the matched route pattern for the metrics label. It is
// a no-op outside PrometheusMetrics.
func SetRoute(ctx context.Context, pattern string) {
	if l, ok := ctx.Value(routeKey{}).(*routeLabel); ok {
		l.pattern = pattern
	}
}

// PrometheusMetrics records request count and latency per method, route
// pattern and status. Raw paths are never used as labels.
func PrometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		start := time.Now()
		label := &routeLabel{pattern: unmatchedRoute}
		wrapper := &metricsResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapper, r.WithContext(context.WithValue(r.Context(), routeKey{}, label)))

		metrics.RecordAPIRequest(
			r.Method,
			label.pattern,
			strconv.Itoa(wrapper.statusCode),
			time.Since(start),
		)
	})
}

// metricsResponseWriter captures the status code.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *metricsResponseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
