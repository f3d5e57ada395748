// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package api

import (
	"math"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/tomtom215/carelink/internal/database"
)

// healthResponse is the liveness payload.
type healthResponse struct {
	Success      bool                    `json:"success"`
	Message      string                  `json:"message"`
	Timestamp    string                  `json:"timestamp"`
	Server       string                  `json:"server"`
	Database     database.ConnectionInfo `json:"database"`
	ResponseTime string                  `json:"response_time"`
}

// databaseHealthResponse is the self-test payload.
type databaseHealthResponse struct {
	Success        bool                    `json:"success"`
	Message        string                  `json:"message"`
	ConnectionInfo database.ConnectionInfo `json:"connection_info"`
	TestQuery      database.Row            `json:"test_query"`
	QueryError     string                  `json:"query_error,omitempty"`
	Environment    map[string]string       `json:"environment"`
}

// Health reports liveness and the connection state. It never queries the
// database, so it stays cheap under monitoring load.
//
// Method: GET
// Path: api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request, _ []string) error {
	now := time.Now()
	elapsed := time.Duration(0)
	if start, ok := requestStart(r.Context()); ok {
		elapsed = now.Sub(start)
	}

	respondJSON(w, http.StatusOK, &healthResponse{
		Success:      true,
		Message:      "API is healthy",
		Timestamp:    now.Format(time.DateTime),
		Server:       "Go " + runtime.Version(),
		Database:     h.store.ConnectionInfo(),
		ResponseTime: formatMillis(elapsed),
	})
	return nil
}

// formatMillis renders d in milliseconds rounded to two decimals, without
// trailing zeros ("0.42ms", "3ms").
func formatMillis(d time.Duration) string {
	ms := math.Round(float64(d)/float64(time.Millisecond)*100) / 100
	return strconv.FormatFloat(ms, 'f', -1, 64) + "ms"
}

// HealthDatabase runs a live self-test against the active backend.
// Driver error text is only included in debug mode.
//
// Method: GET
// Path: api/v1/health/database
func (h *Handler) HealthDatabase(w http.ResponseWriter, r *http.Request, _ []string) error {
	report := h.store.SelfTest(r.Context())

	resp := &databaseHealthResponse{
		Success:        true,
		Message:        "Database connection test",
		ConnectionInfo: report.ConnectionInfo,
		TestQuery:      report.TestQueryResult,
		Environment:    report.Environment,
	}
	if h.cfg.App.Debug {
		resp.QueryError = report.QueryError
	}
	respondJSON(w, http.StatusOK, resp)
	return nil
}
