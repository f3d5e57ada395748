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
	singleServiceSelect = `
SELECT
	dss.id,
	dss.name,
	dss.price,
	dss.category_id,
	dss.status,
	dss.created_at,
	dss.updated_at,
	lm.lang_meta_code
FROM doctor_single_service dss
	INNER JOIN language_meta lm ON lm.reference_id = dss.id`

	singleServiceWhere = `
WHERE dss.status = 'published'
	AND lm.lang_meta_code = ?
	AND lm.reference_type = '` + refSingleService + `'`
)

// ListSingleServices returns one page of published single services.
func (c *Content) ListSingleServices(ctx context.Context, f ListFilter) ([]models.SingleService, int) {
	where := singleServiceWhere
	args := []interface{}{f.Language}
	if p := likePattern(f.Filter); p != "" {
		where += " AND dss.name LIKE ?"
		args = append(args, p)
	}

	pageArgs := append(append(make([]interface{}, 0, len(args)+2), args...), f.Limit, f.Offset)
	rows := c.q.Query(ctx, singleServiceSelect+where+"\nORDER BY dss.created_at DESC\nLIMIT ? OFFSET ?", pageArgs...)
	total := c.q.QueryOne(ctx, `
SELECT COUNT(DISTINCT dss.id) AS total
FROM doctor_single_service dss
	INNER JOIN language_meta lm ON lm.reference_id = dss.id`+where, args...)

	out := make([]models.SingleService, 0, len(rows))
	for _, r := range rows {
		out = append(out, mapSingleService(r, f.Language))
	}
	return out, countOr(total, len(rows))
}

// GetSingleService returns the service or nil.
func (c *Content) GetSingleService(ctx context.Context, id int) *models.SingleService {
	row := c.q.QueryOne(ctx, singleServiceSelect+"\nWHERE dss.id = ?", id)
	if row == nil {
		return nil
	}
	s := mapSingleService(row, "vi")
	return &s
}

func mapSingleService(r Row, lang string) models.SingleService {
	return models.SingleService{
		ID:         r.Int("id"),
		Name:       r.String("name"),
		Price:      r.Float("price"),
		CategoryID: r.Int("category_id"),
		Status:     r.StringOr("status", "active"),
		Language:   r.StringOr("lang_meta_code", lang),
		CreatedAt:  r.String("created_at"),
		UpdatedAt:  r.String("updated_at"),
	}
}
