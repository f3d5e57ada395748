// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

// Package services adapts blocking components to suture.Service.
//
// HTTPServerService turns ListenAndServe/Shutdown into a context-driven
// Serve. Components that already implement Serve(ctx) error, such as
// ratelimit.Sweeper, are added to the tree directly.
package services
