// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

/*
Command server runs the CareLink content API.

Startup order:

 1. Configuration (koanf): defaults, config.yaml, .env, environment
 2. Logging (zerolog)
 3. Database: ranked backends, first reachable wins; degraded mode if none
 4. Rate limiter store (file, badger or memory)
 5. HTTP handler: content router inside the chi mux
 6. Supervisor tree: HTTP server and rate-limit sweeper

# Configuration

The variables of the previous deployment still apply:

	DB_HOST, DB_PORT, DB_DATABASE, DB_USERNAME, DB_PASSWORD, APP_DEBUG

Other settings use section-prefixed names, for example:

	SERVER_PORT=8000
	RATE_LIMIT_REQUESTS=60
	RATE_LIMIT_WINDOW=60s
	RATE_LIMIT_STORE=badger
	LOG_LEVEL=debug
	LOG_FORMAT=console

CONFIG_PATH points at a YAML file; otherwise config.yaml is looked up in
the working directory.

# Signals

SIGINT and SIGTERM stop the supervisor tree. The HTTP server drains for
server.shutdown_timeout, then the limiter store and database are closed.

# Example

	DB_HOST=127.0.0.1 DB_DATABASE=cms DB_USERNAME=reader DB_PASSWORD=secret ./carelink
	curl 'http://localhost:8000/api/v1/doctors?lang=en&page_size=5'
*/
package main
