// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/carelink/internal/config"
)

// BackendKind names the strategy that serves queries.
type BackendKind string

const (
	KindMySQL       BackendKind = config.BackendMySQL
	KindMySQLLegacy BackendKind = config.BackendMySQLLegacy
	KindSnapshot    BackendKind = config.BackendSnapshot

	// KindNone means no backend could be reached (degraded mode).
	KindNone BackendKind = "none"
)

// AllKinds lists every kind, for metrics.
var AllKinds = []string{string(KindMySQL), string(KindMySQLLegacy), string(KindSnapshot), string(KindNone)}

var (
	// ErrNotConnected is returned by a backend used before Connect succeeded.
	ErrNotConnected = errors.New("database backend not connected")

	// ErrNoBackend means the manager was built with an empty backend list.
	ErrNoBackend = errors.New("no database backend configured")
)

// Backend is one ranked connection strategy. Implementations must be safe
// for concurrent use once Connect has returned nil.
type Backend interface {
	Kind() BackendKind

	// BindType is the sqlx bind type (sqlx.QUESTION, sqlx.DOLLAR, ...) used
	// to rewrite '?' placeholders before Query and QueryOne.
	BindType() int

	Connect(ctx context.Context) error

	// Query returns every row; a statement with no rows returns (nil, nil).
	Query(ctx context.Context, query string, args []interface{}) ([]Row, error)

	// QueryOne returns the first row, or (nil, nil) when there is none.
	QueryOne(ctx context.Context, query string, args []interface{}) (Row, error)

	// Ping reports whether the backend is still usable.
	Ping(ctx context.Context) error

	Close() error
}

// NewBackends builds the ranked backend list named in cfg.Backends.
// The snapshot backend is skipped while no snapshot path is configured.
func NewBackends(cfg config.DatabaseConfig) ([]Backend, error) {
	out := make([]Backend, 0, len(cfg.Backends))
	for _, name := range cfg.Backends {
		switch BackendKind(strings.ToLower(name)) {
		case KindMySQL:
			out = append(out, NewMySQLBackend(cfg))
		case KindMySQLLegacy:
			out = append(out, NewLegacyBackend(cfg))
		case KindSnapshot:
			if cfg.SnapshotPath == "" {
				continue
			}
			out = append(out, NewSnapshotBackend(cfg.SnapshotPath))
		default:
			return nil, fmt.Errorf("unknown database backend %q", name)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoBackend
	}
	return out, nil
}
