// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Backend names accepted in database.backends.
const (
	BackendMySQL       = "mysql"
	BackendMySQLLegacy = "mysql-legacy"
	BackendSnapshot    = "snapshot"
)

// Rate limit store names accepted in security.rate_limit_store.
const (
	StoreFile   = "file"
	StoreBadger = "badger"
	StoreMemory = "memory"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks value ranges and enumerations. Missing database
// credentials are not an error: the API starts in degraded mode instead.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	d := &c.Database
	if d.Port < 0 || d.Port > 65535 {
		return fmt.Errorf("%w: DB_PORT must be between 0 and 65535, got %d", ErrInvalidConfig, d.Port)
	}
	if len(d.Backends) == 0 {
		return fmt.Errorf("%w: DB_BACKENDS must name at least one backend", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(d.Backends))
	for i, b := range d.Backends {
		b = strings.ToLower(strings.TrimSpace(b))
		switch b {
		case BackendMySQL, BackendMySQLLegacy, BackendSnapshot:
		default:
			return fmt.Errorf("%w: unknown database backend %q", ErrInvalidConfig, b)
		}
		if seen[b] {
			return fmt.Errorf("%w: database backend %q listed twice", ErrInvalidConfig, b)
		}
		seen[b] = true
		d.Backends[i] = b
	}
	if d.QueryTimeout <= 0 {
		return fmt.Errorf("%w: DB_QUERY_TIMEOUT must be positive", ErrInvalidConfig)
	}
	if d.ConnectTimeout <= 0 {
		return fmt.Errorf("%w: DB_CONNECT_TIMEOUT must be positive", ErrInvalidConfig)
	}
	if d.ReconnectInterval < 0 {
		return fmt.Errorf("%w: DB_RECONNECT_INTERVAL must not be negative", ErrInvalidConfig)
	}
	if d.MaxOpenConns < 1 {
		d.MaxOpenConns = 1
	}
	if d.MaxIdleConns > d.MaxOpenConns {
		d.MaxIdleConns = d.MaxOpenConns
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: HTTP_PORT must be between 1 and 65535, got %d", ErrInvalidConfig, c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: SERVER_SHUTDOWN_TIMEOUT must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.MaxPageSize < 1 {
		return fmt.Errorf("%w: API_MAX_PAGE_SIZE must be at least 1", ErrInvalidConfig)
	}
	if c.API.DefaultPageSize < 1 || c.API.DefaultPageSize > c.API.MaxPageSize {
		return fmt.Errorf("%w: API_DEFAULT_PAGE_SIZE must be between 1 and %d", ErrInvalidConfig, c.API.MaxPageSize)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := &c.Security
	if s.RateLimitDisabled {
		return nil
	}
	if s.RateLimitRequests < 1 {
		return fmt.Errorf("%w: RATE_LIMIT_REQUESTS must be at least 1", ErrInvalidConfig)
	}
	// Stamps are whole seconds, so a shorter window never holds one.
	if s.RateLimitWindow < time.Second {
		return fmt.Errorf("%w: RATE_LIMIT_WINDOW must be at least 1s", ErrInvalidConfig)
	}
	s.RateLimitStore = strings.ToLower(strings.TrimSpace(s.RateLimitStore))
	switch s.RateLimitStore {
	case StoreFile, StoreBadger:
		if s.RateLimitDir == "" {
			return fmt.Errorf("%w: RATE_LIMIT_DIR is required for the %s store", ErrInvalidConfig, s.RateLimitStore)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("%w: unknown rate limit store %q", ErrInvalidConfig, s.RateLimitStore)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("%w: LOG_FORMAT must be json or console, got %q", ErrInvalidConfig, c.Logging.Format)
	}
}
