// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

// Package testinfra starts throwaway containers for integration tests.
//
// Everything here is behind the "integration" build tag and needs a Docker
// daemon; tests call SkipIfNoDocker first so they skip cleanly elsewhere.
//
//	func TestContent(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    db, err := testinfra.NewMySQLContainer(ctx, testinfra.WithSeedSQL("testdata/seed.sql"))
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, db)
//
//	    cfg := db.DatabaseConfig()
//	    // build a database.Manager from cfg
//	}
//
// Run with:
//
//	go test -tags integration ./internal/...
package testinfra
