// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/go-mysql-org/go-mysql/client"
	"github.com/go-mysql-org/go-mysql/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cast"

	"github.com/tomtom215/carelink/internal/config"
	"github.com/tomtom215/carelink/internal/logging"
)

// LegacyBackend is the fallback strategy: a single protocol-level MySQL
// connection. Every parameter is bound as text. Access is serialized
// because the connection is not safe for concurrent use.
type LegacyBackend struct {
	cfg config.DatabaseConfig

	mu   sync.Mutex
	conn *client.Conn
}

// NewLegacyBackend returns an unconnected fallback backend.
func NewLegacyBackend(cfg config.DatabaseConfig) *LegacyBackend {
	return &LegacyBackend{cfg: cfg}
}

func (b *LegacyBackend) Kind() BackendKind { return KindMySQLLegacy }

func (b *LegacyBackend) BindType() int { return sqlx.QUESTION }

func (b *LegacyBackend) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dialLocked(ctx)
}

// dialLocked replaces the connection; b.mu must be held.
func (b *LegacyBackend) dialLocked(ctx context.Context) error {
	if b.conn != nil {
		closeQuietly(b.conn)
		b.conn = nil
	}

	dialer := &net.Dialer{Timeout: b.cfg.ConnectTimeout}
	conn, err := client.ConnectWithDialer(ctx, "tcp", b.cfg.Addr(), b.cfg.Username, b.cfg.Password, b.cfg.Name, dialer.DialContext)
	if err != nil {
		return inspectConnectError(err)
	}
	if b.cfg.Charset != "" {
		if err := conn.SetCharset(b.cfg.Charset); err != nil {
			closeQuietly(conn)
			return fmt.Errorf("set charset %s: %w", b.cfg.Charset, err)
		}
	}
	b.conn = conn
	return nil
}

// inspectConnectError surfaces the server error code when the server
// answered, which separates bad credentials from an unreachable host.
func inspectConnectError(err error) error {
	var myErr *mysql.MyError
	if errors.As(err, &myErr) {
		logging.Debug().
			Uint16("code", myErr.Code).
			Str("state", myErr.State).
			Msg("Legacy MySQL connection rejected by server")
		return fmt.Errorf("mysql error %d (%s): %w", myErr.Code, myErr.State, err)
	}
	return fmt.Errorf("mysql connect: %w", err)
}

func (b *LegacyBackend) Query(ctx context.Context, query string, args []interface{}) ([]Row, error) {
	return b.execute(ctx, query, args, 0)
}

func (b *LegacyBackend) QueryOne(ctx context.Context, query string, args []interface{}) (Row, error) {
	rows, err := b.execute(ctx, query, args, 1)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (b *LegacyBackend) execute(ctx context.Context, query string, args []interface{}, limit int) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// A connection dropped by a previous failure is redialed once here.
	if b.conn == nil {
		if err := b.dialLocked(ctx); err != nil {
			return nil, err
		}
	}
	conn := b.conn

	// The protocol client has no context support: closing the socket is
	// the only way to abandon a statement that outlives ctx.
	stop := closeOnCancel(ctx, conn.Close)
	res, err := conn.Execute(query, textArgs(args)...)
	if stop() {
		// Closed under a statement that still completed; the result is
		// usable but the connection is not.
		b.conn = nil
	}
	if err != nil {
		if ctx.Err() != nil || isConnectionError(err) {
			b.conn = nil
			closeQuietly(conn)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %v", ctxErr, err)
		}
		return nil, err
	}
	if res == nil || res.Resultset == nil {
		return nil, nil
	}

	rs := res.Resultset
	names := make([]string, len(rs.Fields))
	for i, f := range rs.Fields {
		names[i] = string(f.Name)
	}

	n := len(rs.Values)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		m := make(map[string]interface{}, len(names))
		for j, name := range names {
			if j < len(rs.Values[i]) {
				m[name] = rs.Values[i][j].Value()
			}
		}
		out = append(out, normalizeRow(m))
	}
	return out, nil
}

// textArgs renders every parameter as a string; NULL stays NULL.
// closeOnCancel calls closeFn if ctx ends before the returned stop is
// called. stop waits for the watcher to exit and reports whether closeFn
// ran.
func closeOnCancel(ctx context.Context, closeFn func() error) (stop func() bool) {
	quit := make(chan struct{})
	closed := make(chan bool, 1)
	go func() {
		select {
		case <-ctx.Done():
			_ = closeFn()
			closed <- true
		case <-quit:
			closed <- false
		}
	}()
	return func() bool {
		close(quit)
		return <-closed
	}
}

func textArgs(args []interface{}) []interface{} {
	out := make([]interface{}, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case nil:
			out[i] = nil
		case []byte:
			out[i] = string(v)
		default:
			out[i] = cast.ToString(v)
		}
	}
	return out
}

func (b *LegacyBackend) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return ErrNotConnected
	}
	return b.conn.Ping()
}

func (b *LegacyBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return nil
	}
	err := b.conn.Close()
	b.conn = nil
	return err
}
