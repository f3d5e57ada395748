// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

/*
Package api serves the public read-only content API.

Request lifecycle (outermost first):

 1. chi mux: request ID, Prometheus instrumentation, gzip, /metrics
 2. Server: failure boundary, baseline security and CORS headers,
    preflight short-circuit, path normalization
 3. router: first matching route, named middleware
    (security, rate_limit, input_validation), then the handler

Every response body is a JSON envelope with a "success" flag. Handler
errors and panics become a 500 whose detail is only shown when app.debug
is set. Database failures are not errors at this level: the connection
manager answers with no rows, which list endpoints render as an empty page
and detail endpoints as a 404.

Files:
  - server.go: entry point (Server)
  - guards.go: named router middleware
  - response.go: envelope and writers
  - params.go: query and path parameter parsing
  - handlers_*.go: one file per resource
  - routes.go: route table
  - http.go: outer chi mux
*/
package api
