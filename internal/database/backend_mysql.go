// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/tomtom215/carelink/internal/config"
)

// MySQLBackend is the primary strategy: a pooled database/sql handle using
// server-side prepared statements (no client-side interpolation).
type MySQLBackend struct {
	cfg config.DatabaseConfig

	mu sync.RWMutex
	db *sqlx.DB
}

// NewMySQLBackend returns an unconnected primary backend.
func NewMySQLBackend(cfg config.DatabaseConfig) *MySQLBackend {
	return &MySQLBackend{cfg: cfg}
}

func (b *MySQLBackend) Kind() BackendKind { return KindMySQL }

func (b *MySQLBackend) BindType() int { return sqlx.QUESTION }

// driverConfig builds the go-sql-driver configuration.
func (b *MySQLBackend) driverConfig() *mysql.Config {
	mc := mysql.NewConfig()
	mc.User = b.cfg.Username
	mc.Passwd = b.cfg.Password
	mc.Net = "tcp"
	mc.Addr = b.cfg.Addr()
	mc.DBName = b.cfg.Name
	mc.Params = map[string]string{"charset": b.cfg.Charset}
	mc.InterpolateParams = false
	mc.ParseTime = false
	mc.Timeout = b.cfg.ConnectTimeout
	mc.ReadTimeout = b.cfg.QueryTimeout
	mc.WriteTimeout = b.cfg.QueryTimeout
	return mc
}

func (b *MySQLBackend) Connect(ctx context.Context) error {
	connector, err := mysql.NewConnector(b.driverConfig())
	if err != nil {
		return fmt.Errorf("mysql config: %w", err)
	}

	db := sqlx.NewDb(sql.OpenDB(connector), "mysql")
	db.SetMaxOpenConns(b.cfg.MaxOpenConns)
	db.SetMaxIdleConns(b.cfg.MaxIdleConns)
	db.SetConnMaxLifetime(b.cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		closeQuietly(db)
		return fmt.Errorf("mysql ping %s: %w", b.cfg.Addr(), err)
	}

	b.mu.Lock()
	old := b.db
	b.db = db
	b.mu.Unlock()
	closeWithLog(old, "mysql pool")
	return nil
}

func (b *MySQLBackend) handle() (*sqlx.DB, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.db == nil {
		return nil, ErrNotConnected
	}
	return b.db, nil
}

func (b *MySQLBackend) Query(ctx context.Context, query string, args []interface{}) ([]Row, error) {
	return b.scan(ctx, query, args, 0)
}

func (b *MySQLBackend) QueryOne(ctx context.Context, query string, args []interface{}) (Row, error) {
	rows, err := b.scan(ctx, query, args, 1)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// scan reads at most limit rows (0 = all) as column maps.
func (b *MySQLBackend) scan(ctx context.Context, query string, args []interface{}, limit int) ([]Row, error) {
	db, err := b.handle()
	if err != nil {
		return nil, err
	}
	return scanRows(ctx, db, query, args, limit)
}

func (b *MySQLBackend) Ping(ctx context.Context) error {
	db, err := b.handle()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func (b *MySQLBackend) Close() error {
	b.mu.Lock()
	db := b.db
	b.db = nil
	b.mu.Unlock()
	if db == nil {
		return nil
	}
	return db.Close()
}

// scanRows is shared by the database/sql based backends.
func scanRows(ctx context.Context, db *sqlx.DB, query string, args []interface{}, limit int) ([]Row, error) {
	rows, err := db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(rows)

	var out []Row
	for rows.Next() {
		m := make(map[string]interface{})
		if err := rows.MapScan(m); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, normalizeRow(m))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
