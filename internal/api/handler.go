// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package api

import (
	"context"

	"github.com/tomtom215/carelink/internal/config"
	"github.com/tomtom215/carelink/internal/database"
)

// ContentStore is what the handlers need from the connection manager.
// *database.Manager implements it.
type ContentStore interface {
	database.Querier
	IsConnected() bool
	ConnectionInfo() database.ConnectionInfo
	SelfTest(ctx context.Context) database.SelfTestReport
}

// Handler holds the per-resource endpoint methods.
type Handler struct {
	store   ContentStore
	content *database.Content
	cfg     *config.Config
}

// NewHandler creates a Handler over store.
func NewHandler(store ContentStore, cfg *config.Config) *Handler {
	return &Handler{
		store:   store,
		content: database.NewContent(store),
		cfg:     cfg,
	}
}
