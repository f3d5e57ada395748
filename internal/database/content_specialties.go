// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package database

import (
	"context"

	"github.com/tomtom215/carelink/internal/models"
)

const (
	specialtyListQuery = `
SELECT c.id, c.name, c.clinical_specialty_rid, c.status, c.` + "`order`" + `, c.created_at, c.updated_at, language_meta.lang_meta_code
FROM doctors_categories c
	INNER JOIN language_meta ON language_meta.reference_id = c.id
WHERE c.status = 'published'
	AND language_meta.reference_type = '` + refCategory + `'
	AND language_meta.lang_meta_code = ?`

	specialtyByIDQuery = `
SELECT c.id, c.name, c.clinical_specialty_rid, c.status, c.` + "`order`" + `, c.created_at, c.updated_at
FROM doctors_categories c
WHERE c.id = ?
	AND c.status = 'published'`
)

// ListSpecialties returns every published specialty in the language,
// ordered by the CMS sort column. The list is not paginated.
func (c *Content) ListSpecialties(ctx context.Context, f ListFilter) []models.Specialty {
	query := specialtyListQuery
	args := []interface{}{f.Language}
	if p := likePattern(f.Filter); p != "" {
		query += " AND (c.name LIKE ?)"
		args = append(args, p)
	}

	rows := c.q.Query(ctx, query+"\nORDER BY c.`order`", args...)
	out := make([]models.Specialty, 0, len(rows))
	for _, r := range rows {
		s := mapSpecialty(r)
		s.Language = r.StringOr("lang_meta_code", f.Language)
		out = append(out, s)
	}
	return out
}

// GetSpecialty returns the published specialty or nil.
func (c *Content) GetSpecialty(ctx context.Context, id int) *models.Specialty {
	row := c.q.QueryOne(ctx, specialtyByIDQuery, id)
	if row == nil {
		return nil
	}
	s := mapSpecialty(row)
	return &s
}

func mapSpecialty(r Row) models.Specialty {
	return models.Specialty{
		ID:                   r.Int("id"),
		ClinicalSpecialtyRID: r.Int("clinical_specialty_rid"),
		Name:                 r.StringOr("name", "Unknown Specialty"),
	}
}
