// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/tomtom215/carelink/internal/config"
	"github.com/tomtom215/carelink/internal/database"
	"github.com/tomtom215/carelink/internal/validation"
)

// Stored language codes.
const (
	langVietnamese = "vi"
	langEnglish    = "en_us"
)

// listQuery holds the normalized common list parameters. Out-of-range
// values are clamped rather than rejected.
type listQuery struct {
	Page     int    `param:"page" validate:"min=1"`
	PageSize int    `param:"page_size" validate:"min=1"`
	Language string `param:"lang" validate:"oneof=vi en_us"`
	Filter   string `param:"filter"`
}

func (q listQuery) offset() int {
	return (q.Page - 1) * q.PageSize
}

func (q listQuery) filter() database.ListFilter {
	return database.ListFilter{
		Language: q.Language,
		Filter:   q.Filter,
		Limit:    q.PageSize,
		Offset:   q.offset(),
	}
}

// filterValue is the filter as reported back in list responses.
func (q listQuery) filterValue() *string {
	if q.Filter == "" {
		return nil
	}
	f := q.Filter
	return &f
}

// atoiLoose parses a query integer; anything unparsable is 0.
func atoiLoose(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// parseLanguage maps "en" to the stored English code; everything else,
// including a missing value, is Vietnamese.
func parseLanguage(r *http.Request) string {
	if r.URL.Query().Get("lang") == "en" {
		return langEnglish
	}
	return langVietnamese
}

// parseListQuery reads page, page_size, lang and filter.
func parseListQuery(r *http.Request, cfg config.APIConfig) listQuery {
	q := r.URL.Query()

	page := 1
	if v, ok := q["page"]; ok && len(v) > 0 {
		page = atoiLoose(v[0])
	}
	if page < 1 {
		page = 1
	}

	size := cfg.DefaultPageSize
	if v, ok := q["page_size"]; ok && len(v) > 0 {
		size = atoiLoose(v[0])
	}
	if size < 1 {
		size = 1
	}
	if size > cfg.MaxPageSize {
		size = cfg.MaxPageSize
	}

	out := listQuery{
		Page:     page,
		PageSize: size,
		Language: parseLanguage(r),
		Filter:   strings.TrimSpace(q.Get("filter")),
	}
	// Unreachable after clamping unless the config is inconsistent.
	if verr := validation.ValidateStruct(&out); verr != nil {
		out.Page, out.PageSize = 1, cfg.DefaultPageSize
	}
	return out
}

// idParam validates a path ID.
type idParam struct {
	ID int `param:"id" validate:"gt=0"`
}

// parseID returns the positive integer in raw, or false.
func parseID(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	if verr := validation.ValidateStruct(&idParam{ID: n}); verr != nil {
		return 0, false
	}
	return n, true
}

// idKind names a path ID in its 400 response.
type idKind struct {
	message string
	detail  string
}

var (
	doctorID         = idKind{"Invalid doctor ID", "Doctor ID must be a positive integer"}
	specialtyID      = idKind{"Invalid specialty ID", "Specialty ID must be a positive integer"}
	postID           = idKind{"Invalid post ID", "Post ID must be a positive integer"}
	categoryID       = idKind{"Invalid category ID", "Category ID must be a positive integer"}
	serviceID        = idKind{"Invalid service ID", "Service ID must be a positive integer"}
	packageID        = idKind{"Invalid package ID", "Package ID must be a positive integer"}
	packageServiceID = idKind{"Invalid package service ID", "Package service ID must be a positive integer"}
)

// requireID parses params[0] or writes the 400 for kind.
func requireID(w http.ResponseWriter, params []string, kind idKind) (int, bool) {
	raw := ""
	if len(params) > 0 {
		raw = params[0]
	}
	id, ok := parseID(raw)
	if !ok {
		respondError(w, http.StatusBadRequest, kind.message, kind.detail)
	}
	return id, ok
}
