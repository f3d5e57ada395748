// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tomtom215/carelink/internal/config"
)

const (
	// DefaultMySQLImage matches the production server's major version.
	DefaultMySQLImage = "mysql:8.0"

	mysqlPort     = "3306/tcp"
	mysqlDatabase = "carelink"
	mysqlUser     = "carelink"
	mysqlPassword = "carelink-test"
)

// MySQLContainer is a running MySQL server with an empty or seeded schema.
type MySQLContainer struct {
	testcontainers.Container
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

// MySQLOption configures NewMySQLContainer.
type MySQLOption func(*mysqlConfig)

type mysqlConfig struct {
	image        string
	seedFiles    []string
	startTimeout time.Duration
}

// WithMySQLImage overrides DefaultMySQLImage.
func WithMySQLImage(image string) MySQLOption {
	return func(c *mysqlConfig) { c.image = image }
}

// WithSeedSQL copies a .sql file into the init directory; files run in the
// order given, before the server accepts TCP connections.
func WithSeedSQL(path string) MySQLOption {
	return func(c *mysqlConfig) { c.seedFiles = append(c.seedFiles, path) }
}

// WithStartTimeout bounds how long to wait for the server.
func WithStartTimeout(d time.Duration) MySQLOption {
	return func(c *mysqlConfig) { c.startTimeout = d }
}

// NewMySQLContainer starts MySQL and waits until it listens on TCP.
func NewMySQLContainer(ctx context.Context, opts ...MySQLOption) (*MySQLContainer, error) {
	cfg := &mysqlConfig{
		image:        DefaultMySQLImage,
		startTimeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	files := make([]testcontainers.ContainerFile, 0, len(cfg.seedFiles))
	for i, path := range cfg.seedFiles {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve seed file %s: %w", path, err)
		}
		files = append(files, testcontainers.ContainerFile{
			HostFilePath:      abs,
			ContainerFilePath: fmt.Sprintf("/docker-entrypoint-initdb.d/%02d-%s", i+1, filepath.Base(abs)),
			FileMode:          0o644,
		})
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{mysqlPort},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": mysqlPassword,
			"MYSQL_DATABASE":      mysqlDatabase,
			"MYSQL_USER":          mysqlUser,
			"MYSQL_PASSWORD":      mysqlPassword,
		},
		Cmd:   []string{"--character-set-server=utf8mb4", "--collation-server=utf8mb4_unicode_ci"},
		Files: files,
		// The entrypoint's temporary server logs "ready for connections"
		// with port 0; only the final server reports 3306.
		WaitingFor: wait.ForAll(
			wait.ForLog(`ready for connections.*port: 3306`).AsRegexp(),
			wait.ForListeningPort(mysqlPort),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start mysql container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, mysqlPort)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	return &MySQLContainer{
		Container: container,
		Host:      host,
		Port:      port.Int(),
		Database:  mysqlDatabase,
		Username:  mysqlUser,
		Password:  mysqlPassword,
	}, nil
}

// DatabaseConfig returns a config pointing at the container with the
// mysql backend first and the legacy backend as fallback.
func (c *MySQLContainer) DatabaseConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:           c.Host,
		Port:           c.Port,
		Name:           c.Database,
		Username:       c.Username,
		Password:       c.Password,
		Charset:        "utf8mb4",
		Backends:       []string{config.BackendMySQL, config.BackendMySQLLegacy},
		ConnectTimeout: 10 * time.Second,
		QueryTimeout:   10 * time.Second,
		MaxOpenConns:   4,
		MaxIdleConns:   2,
	}
}
