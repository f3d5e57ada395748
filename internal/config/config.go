// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

// Package config loads CareLink configuration from built-in defaults, an
// optional YAML file, an optional .env file and environment variables, in
// that order of increasing precedence.
//
// The database section keeps the variable names of the existing deployment
// (DB_HOST, DB_PORT, DB_DATABASE, DB_USERNAME, DB_PASSWORD, APP_DEBUG), so an
// environment written for the previous API works unchanged.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	App      AppConfig      `koanf:"app"`
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// AppConfig holds process-wide flags.
type AppConfig struct {
	Name string `koanf:"name"`

	// Debug exposes internal error details in 500 responses (APP_DEBUG).
	Debug bool `koanf:"debug"`
}

// DatabaseConfig describes the MySQL content database and the ranked list
// of backends used to reach it.
type DatabaseConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Name     string `koanf:"name"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Charset  string `koanf:"charset"`

	// Backends is the connection order. Known values: mysql, mysql-legacy, snapshot.
	Backends []string `koanf:"backends"`

	// SnapshotPath points at a DuckDB export of the content tables. The
	// snapshot backend is skipped while this is empty.
	SnapshotPath string `koanf:"snapshot_path"`

	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
	QueryTimeout    time.Duration `koanf:"query_timeout"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`

	// ReconnectInterval > 0 lets a degraded manager retry the backend list,
	// at most once per interval.
	ReconnectInterval time.Duration `koanf:"reconnect_interval"`

	BreakerEnabled bool `koanf:"breaker_enabled"`
}

// Addr returns host:port for dialing.
func (d DatabaseConfig) Addr() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MetricsEnabled  bool          `koanf:"metrics_enabled"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// APIConfig holds pagination defaults for list endpoints.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// SecurityConfig holds request-level protections.
type SecurityConfig struct {
	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// RateLimitStore selects the window storage: file, badger or memory.
	RateLimitStore string `koanf:"rate_limit_store"`
	RateLimitDir   string `koanf:"rate_limit_dir"`

	// TrustProxy derives client addresses from X-Real-IP / X-Forwarded-For.
	TrustProxy bool `koanf:"trust_proxy"`

	// MaxBodyBytes bounds how much of a request body the input check reads.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
