// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package database

import (
	"context"
	"fmt"
	"sync"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver
	"github.com/jmoiron/sqlx"
)

// SnapshotBackend serves queries from a local DuckDB export of the content
// tables. It is the last resort behind the MySQL backends and is opened
// read-only. Statements that rely on MySQL-only functions fail here and,
// like any failed query, produce an empty result.
type SnapshotBackend struct {
	path string

	mu sync.RWMutex
	db *sqlx.DB
}

// NewSnapshotBackend returns an unconnected snapshot backend. ":memory:"
// opens an empty in-memory database.
func NewSnapshotBackend(path string) *SnapshotBackend {
	return &SnapshotBackend{path: path}
}

func (b *SnapshotBackend) Kind() BackendKind { return KindSnapshot }

func (b *SnapshotBackend) BindType() int { return sqlx.DOLLAR }

func (b *SnapshotBackend) dsn() string {
	if b.path == ":memory:" || b.path == "" {
		return ""
	}
	return b.path + "?access_mode=read_only"
}

func (b *SnapshotBackend) Connect(ctx context.Context) error {
	db, err := sqlx.Open("duckdb", b.dsn())
	if err != nil {
		return fmt.Errorf("open snapshot %s: %w", b.path, err)
	}
	// A single connection keeps an in-memory database alive and visible.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		closeQuietly(db)
		return fmt.Errorf("ping snapshot %s: %w", b.path, err)
	}

	b.mu.Lock()
	old := b.db
	b.db = db
	b.mu.Unlock()
	closeWithLog(old, "snapshot database")
	return nil
}

func (b *SnapshotBackend) handle() (*sqlx.DB, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.db == nil {
		return nil, ErrNotConnected
	}
	return b.db, nil
}

func (b *SnapshotBackend) Query(ctx context.Context, query string, args []interface{}) ([]Row, error) {
	db, err := b.handle()
	if err != nil {
		return nil, err
	}
	return scanRows(ctx, db, query, args, 0)
}

func (b *SnapshotBackend) QueryOne(ctx context.Context, query string, args []interface{}) (Row, error) {
	db, err := b.handle()
	if err != nil {
		return nil, err
	}
	rows, err := scanRows(ctx, db, query, args, 1)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (b *SnapshotBackend) Ping(ctx context.Context) error {
	db, err := b.handle()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func (b *SnapshotBackend) Close() error {
	b.mu.Lock()
	db := b.db
	b.db = nil
	b.mu.Unlock()
	if db == nil {
		return nil
	}
	return db.Close()
}
