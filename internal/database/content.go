// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package database

import (
	"context"
	"strings"
)

// Querier is the query surface the content repository needs. *Manager
// implements it; tests substitute a fake.
type Querier interface {
	Query(ctx context.Context, query string, args ...interface{}) []Row
	QueryOne(ctx context.Context, query string, args ...interface{}) Row
}

// Content runs the read queries behind the public endpoints and maps rows
// onto the response models.
type Content struct {
	q Querier
}

// NewContent wraps a Querier.
func NewContent(q Querier) *Content {
	return &Content{q: q}
}

// ListFilter carries the common list parameters. Language is the stored
// language code ("vi" or "en_us").
type ListFilter struct {
	Language string
	Filter   string
	Limit    int
	Offset   int
}

// mediaBaseURL prefixes stored image paths.
const mediaBaseURL = "https://aih.com.vn/storage/"

// Reference types of the CMS language_meta and slugs tables.
const (
	refDoctor         = `Botble\\Doctor\\Models\\Doctor`
	refCategory       = `Botble\\Doctor\\Models\\Category`
	refSingleService  = `Botble\\Doctor\\Models\\SingleService`
	refServicePackage = `Botble\\Doctor\\Models\\ServicePackage`
	refService        = `Botble\\Doctor\\Models\\Service`
	refPost           = `Botble\\Blog\\Models\\Post`
)

// likePattern wraps a trimmed filter for LIKE; "" means no filter.
func likePattern(filter string) string {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return ""
	}
	return "%" + filter + "%"
}

// countOr reads the "total" column of a COUNT row, falling back to the
// number of rows on the current page when the count query returned nothing.
func countOr(row Row, fallback int) int {
	if !row.Has("total") {
		return fallback
	}
	return row.Int("total")
}
