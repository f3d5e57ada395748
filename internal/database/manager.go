// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

// Package database provides access to the MySQL content database.
//
// A Manager owns a ranked list of Backend strategies. On first use it
// connects to the first backend that answers; when none does it enters
// degraded mode (KindNone) and every query returns no rows instead of
// failing. Query errors are logged, counted and answered with an empty
// result, so handlers see "no rows" for both an empty table and a failed
// statement.
//
// The Manager is created once by the server binary and injected into the
// HTTP layer; there is no package-level instance.
package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/time/rate"

	"github.com/tomtom215/carelink/internal/config"
	"github.com/tomtom215/carelink/internal/logging"
	"github.com/tomtom215/carelink/internal/metrics"
)

// ConnectionInfo is the introspection payload. The password itself is
// never included, only whether one is configured.
type ConnectionInfo struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	Database       string `json:"database"`
	Username       string `json:"username"`
	Connected      bool   `json:"connected"`
	ConnectionType string `json:"connection_type"`
	PasswordSet    bool   `json:"password_set"`
	Breaker        string `json:"circuit_breaker"`
}

// Manager selects and holds the active backend.
type Manager struct {
	cfg      config.DatabaseConfig
	backends []Backend
	breaker  *queryBreaker

	// reconnect throttles retries out of degraded mode; nil disables them.
	reconnect *rate.Limiter

	connectOnce sync.Once
	connectMu   sync.Mutex

	mu      sync.RWMutex
	active  Backend
	lastErr error
	closed  atomic.Bool
}

// NewManager builds a manager over backends in rank order. No connection
// is attempted until Connect or the first query.
func NewManager(cfg config.DatabaseConfig, backends ...Backend) *Manager {
	m := &Manager{
		cfg:      cfg,
		backends: backends,
	}
	if cfg.BreakerEnabled {
		m.breaker = newQueryBreaker("content-db")
	}
	if cfg.ReconnectInterval > 0 {
		m.reconnect = rate.NewLimiter(rate.Every(cfg.ReconnectInterval), 1)
	}
	if m.cfg.QueryTimeout <= 0 {
		m.cfg.QueryTimeout = 10 * time.Second
	}
	if m.cfg.ConnectTimeout <= 0 {
		m.cfg.ConnectTimeout = 5 * time.Second
	}
	return m
}

// Connect runs the ranked connection attempt exactly once and returns the
// resulting kind. Later calls return the current kind without reconnecting.
func (m *Manager) Connect(ctx context.Context) BackendKind {
	m.connectOnce.Do(func() {
		// The reconnect token is spent by the initial attempt.
		if m.reconnect != nil {
			m.reconnect.Allow()
		}
		m.connect(ctx)
	})
	return m.Kind()
}

// connect tries each backend in order and records the first that answers.
func (m *Manager) connect(ctx context.Context) {
	m.connectMu.Lock()
	defer m.connectMu.Unlock()

	if m.Kind() != KindNone {
		return
	}

	if len(m.backends) == 0 {
		m.setActive(nil, ErrNoBackend)
		logging.Error().Err(ErrNoBackend).Msg("Database unavailable, serving in degraded mode")
		return
	}

	errs := make([]error, 0, len(m.backends))
	for _, b := range m.backends {
		cctx, cancel := context.WithTimeout(ctx, m.cfg.ConnectTimeout)
		err := b.Connect(cctx)
		cancel()

		if err == nil {
			metrics.DBConnectAttempts.WithLabelValues(string(b.Kind()), "success").Inc()
			m.setActive(b, nil)
			logging.Info().
				Str("backend", string(b.Kind())).
				Str("addr", m.cfg.Addr()).
				Str("database", m.cfg.Name).
				Msg("Database connected")
			return
		}

		metrics.DBConnectAttempts.WithLabelValues(string(b.Kind()), "failure").Inc()
		logging.Warn().Str("backend", string(b.Kind())).Err(err).Msg("Database backend connection failed")
		errs = append(errs, fmt.Errorf("%s: %w", b.Kind(), err))
	}

	joined := errors.Join(errs...)
	m.setActive(nil, joined)
	logging.Error().Err(joined).Str("addr", m.cfg.Addr()).Msg("All database backends failed, serving in degraded mode")
}

func (m *Manager) setActive(b Backend, err error) {
	m.mu.Lock()
	m.active = b
	m.lastErr = err
	m.mu.Unlock()

	kind := KindNone
	if b != nil {
		kind = b.Kind()
	}
	metrics.SetActiveBackend(string(kind), AllKinds...)
}

// acquire returns the active backend, connecting lazily and, when enabled,
// retrying out of degraded mode at the configured pace.
func (m *Manager) acquire(ctx context.Context) Backend {
	if m.closed.Load() {
		return nil
	}
	m.Connect(ctx)

	m.mu.RLock()
	b := m.active
	m.mu.RUnlock()
	if b != nil {
		return b
	}

	if m.reconnect != nil && m.reconnect.Allow() {
		m.connect(ctx)
		m.mu.RLock()
		b = m.active
		m.mu.RUnlock()
	}
	return b
}

// Kind returns the active backend kind.
func (m *Manager) Kind() BackendKind {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == nil {
		return KindNone
	}
	return m.active.Kind()
}

// IsConnected reports whether a backend is active. It never dials.
func (m *Manager) IsConnected() bool {
	return m.Kind() != KindNone
}

// LastError returns the combined connection error of the last failed
// attempt, or nil.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// ConnectionInfo describes the configured target and the current state.
func (m *Manager) ConnectionInfo() ConnectionInfo {
	kind := m.Kind()
	return ConnectionInfo{
		Host:           m.cfg.Host,
		Port:           m.cfg.Port,
		Database:       m.cfg.Name,
		Username:       m.cfg.Username,
		Connected:      kind != KindNone,
		ConnectionType: string(kind),
		PasswordSet:    m.cfg.Password != "",
		Breaker:        m.breaker.state(),
	}
}

// Query runs a statement with '?' placeholders and returns every row. In
// degraded mode, on error, or while the breaker is open it returns nil.
func (m *Manager) Query(ctx context.Context, query string, args ...interface{}) []Row {
	rows, _ := m.run(ctx, query, args, false)
	return rows
}

// QueryOne is Query limited to the first row; nil means no row.
func (m *Manager) QueryOne(ctx context.Context, query string, args ...interface{}) Row {
	rows, _ := m.run(ctx, query, args, true)
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}

// run executes against the active backend and reports the error for
// callers inside the package (SelfTest); public callers drop it.
func (m *Manager) run(ctx context.Context, query string, args []interface{}, one bool) ([]Row, error) {
	b := m.acquire(ctx)
	if b == nil {
		return nil, ErrNotConnected
	}

	ctx, cancel := m.ensureContext(ctx)
	defer cancel()

	bound := sqlx.Rebind(b.BindType(), query)
	start := time.Now()
	rows, err := m.breaker.execute(func() ([]Row, error) {
		if one {
			row, err := b.QueryOne(ctx, bound, args)
			if row == nil {
				return nil, err
			}
			return []Row{row}, err
		}
		return b.Query(ctx, bound, args)
	})

	reason := failureReason(err)
	metrics.RecordDBQuery(string(b.Kind()), time.Since(start), err, reason)
	if err != nil {
		logging.Ctx(ctx).Error().
			Err(err).
			Str("backend", string(b.Kind())).
			Str("reason", reason).
			Int("params", len(args)).
			Msg("Query failed, returning empty result")
		return nil, err
	}
	return rows, nil
}

// ensureContext bounds every query by the configured timeout.
func (m *Manager) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, m.cfg.QueryTimeout)
}

// Ping checks the active backend.
func (m *Manager) Ping(ctx context.Context) error {
	m.mu.RLock()
	b := m.active
	m.mu.RUnlock()
	if b == nil {
		return ErrNotConnected
	}
	ctx, cancel := m.ensureContext(ctx)
	defer cancel()
	return b.Ping(ctx)
}

// Close releases every backend. The manager is unusable afterwards.
func (m *Manager) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	m.mu.Lock()
	m.active = nil
	m.mu.Unlock()

	var errs []error
	for _, b := range m.backends {
		if err := b.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.Kind(), err))
		}
	}
	return errors.Join(errs...)
}
