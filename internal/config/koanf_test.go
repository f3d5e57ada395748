// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points the file layers at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
	t.Setenv(DotEnvPathEnvVar, filepath.Join(dir, "missing.env"))
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Port != 3306 {
		t.Errorf("Database.Port = %d, want 3306", cfg.Database.Port)
	}
	if got := cfg.Database.Backends; len(got) != 2 || got[0] != BackendMySQL || got[1] != BackendMySQLLegacy {
		t.Errorf("Database.Backends = %v, want [mysql mysql-legacy]", got)
	}
	if cfg.Security.RateLimitRequests != 60 {
		t.Errorf("RateLimitRequests = %d, want 60", cfg.Security.RateLimitRequests)
	}
	if cfg.Security.RateLimitWindow != time.Minute {
		t.Errorf("RateLimitWindow = %v, want 1m", cfg.Security.RateLimitWindow)
	}
	if cfg.API.DefaultPageSize != 10 || cfg.API.MaxPageSize != 100 {
		t.Errorf("API page sizes = %d/%d, want 10/100", cfg.API.DefaultPageSize, cfg.API.MaxPageSize)
	}
	if cfg.App.Debug {
		t.Error("App.Debug should default to false")
	}
}

func TestLoad_LegacyDatabaseEnv(t *testing.T) {
	isolate(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_DATABASE", "aih")
	t.Setenv("DB_USERNAME", "reader")
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("APP_DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	d := cfg.Database
	if d.Host != "db.internal" || d.Port != 3307 || d.Name != "aih" || d.Username != "reader" || d.Password != "s3cret" {
		t.Errorf("unexpected database config: %+v", d)
	}
	if d.Addr() != "db.internal:3307" {
		t.Errorf("Addr() = %q", d.Addr())
	}
	if !cfg.App.Debug {
		t.Error("APP_DEBUG=true should enable debug")
	}
}

func TestLoad_YAMLThenEnvPrecedence(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, `
database:
  host: yaml-host
  backends: [mysql-legacy, snapshot]
  snapshot_path: /tmp/content.duckdb
security:
  rate_limit_requests: 30
  rate_limit_window: 30s
`)
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("RATE_LIMIT_REQUESTS", "45")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Host != "yaml-host" {
		t.Errorf("Host = %q, want yaml-host", cfg.Database.Host)
	}
	if got := cfg.Database.Backends; len(got) != 2 || got[1] != BackendSnapshot {
		t.Errorf("Backends = %v", got)
	}
	if cfg.Security.RateLimitRequests != 45 {
		t.Errorf("RateLimitRequests = %d, want env override 45", cfg.Security.RateLimitRequests)
	}
	if cfg.Security.RateLimitWindow != 30*time.Second {
		t.Errorf("RateLimitWindow = %v, want 30s", cfg.Security.RateLimitWindow)
	}
}

func TestLoad_DotEnvDoesNotOverrideEnv(t *testing.T) {
	dir := isolate(t)
	envPath := filepath.Join(dir, ".env")
	writeFile(t, envPath, "DB_HOST=dotenv-host\nDB_DATABASE=from_file\nUNRELATED=1\n")
	t.Setenv(DotEnvPathEnvVar, envPath)
	t.Setenv("DB_HOST", "env-host")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Host != "env-host" {
		t.Errorf("Host = %q, want env-host", cfg.Database.Host)
	}
	if cfg.Database.Name != "from_file" {
		t.Errorf("Name = %q, want from_file", cfg.Database.Name)
	}
}

func TestLoad_CommaSeparatedSlices(t *testing.T) {
	isolate(t)
	t.Setenv("DB_BACKENDS", " mysql , snapshot ")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.Database.Backends; len(got) != 2 || got[0] != "mysql" || got[1] != "snapshot" {
		t.Errorf("Backends = %q", got)
	}
	if len(cfg.Security.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"DB_HOST":     "database.host",
		"db_database": "database.name",
		"APP_DEBUG":   "app.debug",
		"LOG_LEVEL":   "logging.level",
		"HOME":        "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown backend", func(c *Config) { c.Database.Backends = []string{"postgres"} }, true},
		{"duplicate backend", func(c *Config) { c.Database.Backends = []string{"mysql", "MySQL"} }, true},
		{"no backends", func(c *Config) { c.Database.Backends = nil }, true},
		{"bad http port", func(c *Config) { c.Server.Port = 0 }, true},
		{"default page above max", func(c *Config) { c.API.DefaultPageSize = 500 }, true},
		{"zero rate limit", func(c *Config) { c.Security.RateLimitRequests = 0 }, true},
		{"zero rate limit but disabled", func(c *Config) {
			c.Security.RateLimitRequests = 0
			c.Security.RateLimitDisabled = true
		}, false},
		{"sub-second window", func(c *Config) { c.Security.RateLimitWindow = 500 * time.Millisecond }, true},
		{"one second window", func(c *Config) { c.Security.RateLimitWindow = time.Second }, false},
		{"unknown store", func(c *Config) { c.Security.RateLimitStore = "redis" }, true},
		{"memory store without dir", func(c *Config) {
			c.Security.RateLimitStore = "memory"
			c.Security.RateLimitDir = ""
		}, false},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}
