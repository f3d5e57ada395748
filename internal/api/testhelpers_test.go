// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/carelink/internal/config"
	"github.com/tomtom215/carelink/internal/database"
	"github.com/tomtom215/carelink/internal/ratelimit"
)

// recordedQuery is one call seen by fakeStore.
type recordedQuery struct {
	SQL  string
	Args []interface{}
}

// fakeStore answers queries through a callback and records them.
type fakeStore struct {
	mu      sync.Mutex
	queries []recordedQuery
	rows    func(sql string, args []interface{}) []database.Row

	connected bool
	report    database.SelfTestReport
}

func (f *fakeStore) Query(_ context.Context, sql string, args ...interface{}) []database.Row {
	f.mu.Lock()
	f.queries = append(f.queries, recordedQuery{SQL: sql, Args: args})
	f.mu.Unlock()
	if f.rows == nil {
		return nil
	}
	return f.rows(sql, args)
}

func (f *fakeStore) QueryOne(ctx context.Context, sql string, args ...interface{}) database.Row {
	rows := f.Query(ctx, sql, args...)
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}

func (f *fakeStore) IsConnected() bool { return f.connected }

func (f *fakeStore) ConnectionInfo() database.ConnectionInfo {
	kind := "none"
	if f.connected {
		kind = "mysql"
	}
	return database.ConnectionInfo{
		Host:           "db.internal",
		Port:           3306,
		Database:       "carelink",
		Username:       "reader",
		Connected:      f.connected,
		ConnectionType: kind,
		PasswordSet:    true,
		Breaker:        "closed",
	}
}

func (f *fakeStore) SelfTest(context.Context) database.SelfTestReport {
	return f.report
}

func (f *fakeStore) recorded() []recordedQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedQuery(nil), f.queries...)
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "CareLink"},
		Server: config.ServerConfig{
			MetricsEnabled: true,
		},
		API: config.APIConfig{
			DefaultPageSize: 10,
			MaxPageSize:     100,
		},
		Security: config.SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 60,
			RateLimitWindow:   time.Minute,
			MaxBodyBytes:      1 << 20,
		},
	}
}

// newTestServer builds a server over store with an in-memory limiter.
func newTestServer(t *testing.T, cfg *config.Config, store *fakeStore, opts ...ratelimit.Option) *Server {
	t.Helper()
	limiter := ratelimit.New(ratelimit.NewMemoryStore(), cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow, opts...)
	srv, err := NewServer(cfg, NewRouter(), Deps{Store: store, Limiter: limiter})
	require.NoError(t, err)
	return srv
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return body
}

// countRow answers COUNT queries with total and everything else with rows.
func countRow(total int, rows ...database.Row) func(string, []interface{}) []database.Row {
	return func(sql string, _ []interface{}) []database.Row {
		if strings.Contains(sql, "COUNT(") {
			return []database.Row{{"total": total}}
		}
		return rows
	}
}
