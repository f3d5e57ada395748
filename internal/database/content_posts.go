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
	postSelect = `
SELECT
	lm.lang_meta_code,
	p.id,
	p.name,
	p.description,
	p.content,
	p.status,
	CONCAT('` + mediaBaseURL + `', p.image) AS image,
	p.views,
	p.created_at,
	p.updated_at,
	p.is_featured,
	c.name AS category_name,
	c.id AS category_id,
	s.key AS slugable,
	GROUP_CONCAT(DISTINCT t.name SEPARATOR ', ') AS tags_name
FROM posts p
	INNER JOIN language_meta lm ON lm.reference_id = p.id
	INNER JOIN post_categories pc ON pc.post_id = p.id
	INNER JOIN categories c ON c.id = pc.category_id
	LEFT JOIN slugs s ON s.reference_id = p.id AND s.reference_type = '` + refPost + `'
	LEFT JOIN post_tags pt ON pt.post_id = p.id
	LEFT JOIN tags t ON t.id = pt.tag_id`

	postCount = `
SELECT COUNT(DISTINCT p.id) AS total
FROM posts p
	INNER JOIN language_meta lm ON lm.reference_id = p.id
	INNER JOIN post_categories pc ON pc.post_id = p.id
	INNER JOIN categories c ON c.id = pc.category_id`

	postWhere = `
WHERE p.status = 'published'
	AND lm.lang_meta_code = ?
	AND lm.reference_type = '` + refPost + `'`

	postGroupBy = `
GROUP BY p.id, lm.lang_meta_code, c.id, s.key`

	postPage = `
ORDER BY p.created_at DESC
LIMIT ? OFFSET ?`
)

// ListPosts returns one page of published posts matching the filter in
// name, description or content.
func (c *Content) ListPosts(ctx context.Context, f ListFilter) ([]models.Post, int) {
	where := postWhere
	args := []interface{}{f.Language}
	if p := likePattern(f.Filter); p != "" {
		where += " AND (p.name LIKE ? OR p.description LIKE ? OR p.content LIKE ?)"
		args = append(args, p, p, p)
	}
	return c.listPosts(ctx, where, args, f)
}

// ListPostsByCategory returns one page of published posts in a category.
func (c *Content) ListPostsByCategory(ctx context.Context, categoryID int, f ListFilter) ([]models.Post, int) {
	return c.listPosts(ctx, postWhere+"\n\tAND c.id = ?", []interface{}{f.Language, categoryID}, f)
}

func (c *Content) listPosts(ctx context.Context, where string, args []interface{}, f ListFilter) ([]models.Post, int) {
	pageArgs := make([]interface{}, 0, len(args)+2)
	pageArgs = append(pageArgs, args...)
	pageArgs = append(pageArgs, f.Limit, f.Offset)

	rows := c.q.Query(ctx, postSelect+where+postGroupBy+postPage, pageArgs...)
	total := c.q.QueryOne(ctx, postCount+where, args...)

	out := make([]models.Post, 0, len(rows))
	for _, r := range rows {
		out = append(out, mapPost(r, f.Language))
	}
	return out, countOr(total, len(rows))
}

// GetPost returns the post or nil.
func (c *Content) GetPost(ctx context.Context, id int) *models.Post {
	row := c.q.QueryOne(ctx, postSelect+"\nWHERE p.id = ?"+postGroupBy, id)
	if row == nil {
		return nil
	}
	p := mapPost(row, "vi")
	return &p
}

func mapPost(r Row, lang string) models.Post {
	return models.Post{
		ID:           r.Int("id"),
		Name:         r.String("name"),
		Description:  r.String("description"),
		Content:      r.String("content"),
		Status:       r.StringOr("status", "published"),
		Image:        r.String("image"),
		Views:        r.Int("views"),
		IsFeatured:   r.Bool("is_featured"),
		CategoryID:   r.Int("category_id"),
		CategoryName: r.String("category_name"),
		Slug:         r.String("slugable"),
		Tags:         r.String("tags_name"),
		Language:     r.StringOr("lang_meta_code", lang),
		CreatedAt:    r.String("created_at"),
		UpdatedAt:    r.String("updated_at"),
	}
}
