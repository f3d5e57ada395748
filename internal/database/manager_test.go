// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package database

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/carelink/internal/config"
)

// fakeBackend records calls and answers from canned data.
type fakeBackend struct {
	kind       BackendKind
	connectErr error
	queryErr   error
	rows       []Row

	mu       sync.Mutex
	connects int
	queries  []string
	args     [][]interface{}
	closed   bool
}

func (f *fakeBackend) Kind() BackendKind { return f.kind }
func (f *fakeBackend) BindType() int     { return sqlx.QUESTION }

func (f *fakeBackend) Connect(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	return f.connectErr
}

func (f *fakeBackend) Query(_ context.Context, q string, args []interface{}) ([]Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	f.args = append(f.args, args)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}

func (f *fakeBackend) QueryOne(ctx context.Context, q string, args []interface{}) (Row, error) {
	rows, err := f.Query(ctx, q, args)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (f *fakeBackend) Ping(context.Context) error { return f.connectErr }

func (f *fakeBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeBackend) connectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects
}

func testDBConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:           "db.internal",
		Port:           3306,
		Name:           "content",
		Username:       "reader",
		Password:       "s3cret-value",
		ConnectTimeout: time.Second,
		QueryTimeout:   time.Second,
	}
}

func TestManager_ConnectUsesFirstWorkingBackend(t *testing.T) {
	primary := &fakeBackend{kind: KindMySQL, connectErr: errors.New("connection refused")}
	legacy := &fakeBackend{kind: KindMySQLLegacy}
	snapshot := &fakeBackend{kind: KindSnapshot}

	m := NewManager(testDBConfig(), primary, legacy, snapshot)
	if got := m.Connect(context.Background()); got != KindMySQLLegacy {
		t.Fatalf("Connect() = %q, want %q", got, KindMySQLLegacy)
	}
	if snapshot.connectCount() != 0 {
		t.Error("backends after the first success must not be tried")
	}
	if !m.IsConnected() {
		t.Error("IsConnected() = false after successful failover")
	}
}

func TestManager_ConnectRunsOnce(t *testing.T) {
	b := &fakeBackend{kind: KindMySQL}
	m := NewManager(testDBConfig(), b)

	for i := 0; i < 3; i++ {
		m.Connect(context.Background())
		m.Query(context.Background(), "SELECT 1")
	}
	if n := b.connectCount(); n != 1 {
		t.Errorf("Connect called %d times, want 1", n)
	}
}

func TestManager_DegradedMode(t *testing.T) {
	primary := &fakeBackend{kind: KindMySQL, connectErr: errors.New("access denied")}
	legacy := &fakeBackend{kind: KindMySQLLegacy, connectErr: errors.New("connection refused")}

	m := NewManager(testDBConfig(), primary, legacy)
	if got := m.Connect(context.Background()); got != KindNone {
		t.Fatalf("Connect() = %q, want %q", got, KindNone)
	}

	err := m.LastError()
	if err == nil {
		t.Fatal("LastError() = nil in degraded mode")
	}
	for _, want := range []string{"mysql: access denied", "mysql-legacy: connection refused"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("LastError() = %q, missing %q", err, want)
		}
	}

	if rows := m.Query(context.Background(), "SELECT * FROM doctors"); rows != nil {
		t.Errorf("Query() in degraded mode = %v, want nil", rows)
	}
	if row := m.QueryOne(context.Background(), "SELECT * FROM doctors WHERE id = ?", 1); row != nil {
		t.Errorf("QueryOne() in degraded mode = %v, want nil", row)
	}
	if primary.connectCount() != 1 {
		t.Error("queries in degraded mode must not redial without a reconnect interval")
	}
}

func TestManager_NoBackends(t *testing.T) {
	m := NewManager(testDBConfig())
	if got := m.Connect(context.Background()); got != KindNone {
		t.Fatalf("Connect() = %q, want none", got)
	}
	if !errors.Is(m.LastError(), ErrNoBackend) {
		t.Errorf("LastError() = %v, want ErrNoBackend", m.LastError())
	}
}

func TestManager_ReconnectFromDegradedMode(t *testing.T) {
	cfg := testDBConfig()
	cfg.ReconnectInterval = time.Millisecond
	b := &fakeBackend{kind: KindMySQL, connectErr: errors.New("connection refused")}

	m := NewManager(cfg, b)
	m.Connect(context.Background())

	b.mu.Lock()
	b.connectErr = nil
	b.rows = []Row{{"test_value": int64(1)}}
	b.mu.Unlock()

	time.Sleep(5 * time.Millisecond)
	rows := m.Query(context.Background(), "SELECT 1 AS test_value")
	if len(rows) != 1 {
		t.Fatalf("Query() after recovery returned %d rows, want 1", len(rows))
	}
	if m.Kind() != KindMySQL {
		t.Errorf("Kind() = %q, want mysql", m.Kind())
	}
}

func TestManager_QueryErrorReturnsEmpty(t *testing.T) {
	b := &fakeBackend{kind: KindMySQL, queryErr: errors.New("Table 'content.doctors' doesn't exist")}
	m := NewManager(testDBConfig(), b)

	if rows := m.Query(context.Background(), "SELECT * FROM doctors"); rows != nil {
		t.Errorf("Query() = %v, want nil on error", rows)
	}
	if row := m.QueryOne(context.Background(), "SELECT * FROM doctors LIMIT 1"); row != nil {
		t.Errorf("QueryOne() = %v, want nil on error", row)
	}
	if !m.IsConnected() {
		t.Error("a failed statement must not drop the active backend")
	}
}

func TestManager_QueryPassesArgsInOrder(t *testing.T) {
	b := &fakeBackend{kind: KindMySQL, rows: []Row{{"id": "7"}}}
	m := NewManager(testDBConfig(), b)

	row := m.QueryOne(context.Background(), "SELECT id FROM posts WHERE id = ? AND lang = ?", 7, "vi")
	if row.Int("id") != 7 {
		t.Errorf("row id = %v, want 7", row["id"])
	}
	if got := b.args[0]; len(got) != 2 || got[0] != 7 || got[1] != "vi" {
		t.Errorf("args = %v, want [7 vi]", got)
	}
}

func TestManager_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cfg := testDBConfig()
	cfg.BreakerEnabled = true
	b := &fakeBackend{kind: KindMySQL, queryErr: errors.New("connection reset by peer")}
	m := NewManager(cfg, b)

	for i := 0; i < 5; i++ {
		m.Query(context.Background(), "SELECT 1")
	}
	if got := m.ConnectionInfo().Breaker; got != "open" {
		t.Fatalf("breaker state = %q, want open", got)
	}

	before := len(b.queries)
	_, err := m.run(context.Background(), "SELECT 1", nil, false)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("run() error = %v, want ErrOpenState", err)
	}
	if len(b.queries) != before {
		t.Error("an open breaker must not reach the backend")
	}
}

func TestManager_ConnectionInfoHidesPassword(t *testing.T) {
	m := NewManager(testDBConfig(), &fakeBackend{kind: KindMySQL})
	m.Connect(context.Background())

	info := m.ConnectionInfo()
	if !info.PasswordSet {
		t.Error("PasswordSet = false, want true")
	}
	if info.ConnectionType != "mysql" || !info.Connected {
		t.Errorf("info = %+v, want connected mysql", info)
	}
	if info.Breaker != "disabled" {
		t.Errorf("Breaker = %q, want disabled", info.Breaker)
	}

	report := m.SelfTest(context.Background())
	for k, v := range report.Environment {
		if strings.Contains(v, "s3cret") {
			t.Errorf("environment[%s] leaks the password", k)
		}
	}
	if report.Environment["DB_PASSWORD"] != "***set***" {
		t.Errorf("DB_PASSWORD = %q, want ***set***", report.Environment["DB_PASSWORD"])
	}
}

func TestManager_SelfTest(t *testing.T) {
	b := &fakeBackend{kind: KindMySQL, rows: []Row{{"test_value": int64(1)}}}
	cfg := testDBConfig()
	cfg.Password = ""
	m := NewManager(cfg, b)
	m.Connect(context.Background())

	report := m.SelfTest(context.Background())
	if !report.Connected || report.ConnectionType != "mysql" {
		t.Errorf("report = %+v, want connected mysql", report)
	}
	if report.TestQueryResult.Int("test_value") != 1 {
		t.Errorf("test_query = %v, want test_value 1", report.TestQueryResult)
	}
	if report.QueryError != "" {
		t.Errorf("QueryError = %q, want empty", report.QueryError)
	}
	if report.Environment["DB_PASSWORD"] != "not set" {
		t.Errorf("DB_PASSWORD = %q, want not set", report.Environment["DB_PASSWORD"])
	}

	b.mu.Lock()
	b.queryErr = errors.New("Unknown column")
	b.mu.Unlock()
	if report := m.SelfTest(context.Background()); report.QueryError != "Unknown column" {
		t.Errorf("QueryError = %q, want driver message", report.QueryError)
	}
}

func TestManager_SelfTestDegraded(t *testing.T) {
	b := &fakeBackend{kind: KindMySQL, connectErr: errors.New("connection refused")}
	m := NewManager(testDBConfig(), b)
	m.Connect(context.Background())

	report := m.SelfTest(context.Background())
	if report.Connected || report.ConnectionType != "none" {
		t.Errorf("report = %+v, want disconnected", report)
	}
	if report.TestQueryResult != nil || report.QueryError != "" {
		t.Errorf("no query should run in degraded mode: %+v", report)
	}
	if len(b.queries) != 0 {
		t.Error("backend was queried in degraded mode")
	}
}

func TestManager_Close(t *testing.T) {
	a := &fakeBackend{kind: KindMySQL}
	b := &fakeBackend{kind: KindMySQLLegacy}
	m := NewManager(testDBConfig(), a, b)
	m.Connect(context.Background())

	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if !a.closed || !b.closed {
		t.Error("Close() must close every backend")
	}
	if rows := m.Query(context.Background(), "SELECT 1"); rows != nil {
		t.Error("Query() after Close() must return nil")
	}
}

func TestNewBackends(t *testing.T) {
	cfg := testDBConfig()
	cfg.Backends = []string{"mysql", "MYSQL-LEGACY", "snapshot"}

	backends, err := NewBackends(cfg)
	if err != nil {
		t.Fatalf("NewBackends() error = %v", err)
	}
	if len(backends) != 2 {
		t.Fatalf("got %d backends, want 2 (snapshot skipped without a path)", len(backends))
	}
	if backends[0].Kind() != KindMySQL || backends[1].Kind() != KindMySQLLegacy {
		t.Errorf("order = %s,%s", backends[0].Kind(), backends[1].Kind())
	}

	cfg.Backends = []string{"postgres"}
	if _, err := NewBackends(cfg); err == nil {
		t.Error("NewBackends() accepted an unknown backend")
	}
}

func TestFailureReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{gobreaker.ErrOpenState, "breaker_open"},
		{context.DeadlineExceeded, "timeout"},
		{context.Canceled, "canceled"},
		{errors.New("dial tcp: connection refused"), "connection"},
		{errors.New("Unknown column 'x'"), "query"},
	}
	for _, tt := range tests {
		if got := failureReason(tt.err); got != tt.want {
			t.Errorf("failureReason(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
