// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists YAML config locations, first match wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/carelink/config.yaml",
}

const (
	// ConfigPathEnvVar overrides the YAML config location.
	ConfigPathEnvVar = "CONFIG_PATH"

	// DotEnvPathEnvVar overrides the .env location.
	DotEnvPathEnvVar = "DOTENV_PATH"
)

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:  "CareLink",
			Debug: false,
		},
		Database: DatabaseConfig{
			Host:              "localhost",
			Port:              3306,
			Charset:           "utf8mb4",
			Backends:          []string{"mysql", "mysql-legacy"},
			ConnectTimeout:    5 * time.Second,
			QueryTimeout:      10 * time.Second,
			MaxOpenConns:      20,
			MaxIdleConns:      5,
			ConnMaxLifetime:   30 * time.Minute,
			ReconnectInterval: 0,
			BreakerEnabled:    true,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MetricsEnabled:  true,
		},
		API: APIConfig{
			DefaultPageSize: 10,
			MaxPageSize:     100,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 60,
			RateLimitWindow:   60 * time.Second,
			RateLimitStore:    "file",
			RateLimitDir:      "storage/cache",
			MaxBodyBytes:      1 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from, in increasing precedence:
//  1. built-in defaults
//  2. YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. .env file (DOTENV_PATH or ./.env), never overriding real env vars
//  4. environment variables
//
// The result is validated before it is returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := loadDotEnv(k, findDotEnvFile()); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func findDotEnvFile() string {
	p := os.Getenv(DotEnvPathEnvVar)
	if p == "" {
		p = ".env"
	}
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

// loadDotEnv merges KEY=value pairs from a .env file. Keys already present
// in the process environment are skipped so that the env layer keeps the
// final word.
func loadDotEnv(k *koanf.Koanf, path string) error {
	if path == "" {
		return nil
	}

	// The dotenv keys are flat; a separate instance keeps them from being
	// split on the main instance's delimiter.
	raw := koanf.New("\x00")
	if err := raw.Load(file.Provider(path), dotenv.Parser()); err != nil {
		return fmt.Errorf("failed to load dotenv file %s: %w", path, err)
	}

	for _, key := range raw.Keys() {
		if _, set := os.LookupEnv(key); set {
			continue
		}
		target := envTransformFunc(key)
		if target == "" {
			continue
		}
		if err := k.Set(target, raw.String(key)); err != nil {
			return fmt.Errorf("failed to set %s from dotenv: %w", target, err)
		}
	}
	return nil
}

var sliceConfigPaths = []string{
	"database.backends",
	"security.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// The DB_* and APP_DEBUG names are the deployment contract of the content
// database and must not change.
var envMappings = map[string]string{
	"app_name":  "app.name",
	"app_debug": "app.debug",

	"db_host":               "database.host",
	"db_port":               "database.port",
	"db_database":           "database.name",
	"db_username":           "database.username",
	"db_password":           "database.password",
	"db_charset":            "database.charset",
	"db_backends":           "database.backends",
	"db_snapshot_path":      "database.snapshot_path",
	"db_connect_timeout":    "database.connect_timeout",
	"db_query_timeout":      "database.query_timeout",
	"db_max_open_conns":     "database.max_open_conns",
	"db_max_idle_conns":     "database.max_idle_conns",
	"db_conn_max_lifetime":  "database.conn_max_lifetime",
	"db_reconnect_interval": "database.reconnect_interval",
	"db_breaker_enabled":    "database.breaker_enabled",

	"http_host":               "server.host",
	"http_port":               "server.port",
	"server_read_timeout":     "server.read_timeout",
	"server_write_timeout":    "server.write_timeout",
	"server_idle_timeout":     "server.idle_timeout",
	"server_shutdown_timeout": "server.shutdown_timeout",
	"metrics_enabled":         "server.metrics_enabled",

	"api_default_page_size": "api.default_page_size",
	"api_max_page_size":     "api.max_page_size",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"rate_limit_store":    "security.rate_limit_store",
	"rate_limit_dir":      "security.rate_limit_dir",
	"trust_proxy":         "security.trust_proxy",
	"max_body_bytes":      "security.max_body_bytes",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unknown variables return "" and are ignored by the env provider.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
