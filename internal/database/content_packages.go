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
	packagesBySpecialtyQuery = `
SELECT
	dsp.id,
	dsp.cate_id,
	dsp.name,
	dsp.description,
	CONCAT('` + mediaBaseURL + `', dsp.image) AS image,
	dsp.status,
	dsp.category_id,
	dsp.created_at,
	dsp.updated_at,
	c.name AS category_name,
	c.clinical_specialty_rid,
	lm.lang_meta_code
FROM doctor_service_packages dsp
	INNER JOIN doctors_categories c ON c.id = dsp.category_id
	INNER JOIN language_meta lm ON lm.reference_id = dsp.id
WHERE lm.lang_meta_code = ?
	AND lm.reference_type = '` + refServicePackage + `'
	AND dsp.category_id = ?
	AND dsp.status = 'published'
ORDER BY dsp.created_at DESC`

	packageServicesQuery = `
SELECT
	ds.id,
	ds.cate_id,
	ds.name,
	ds.description,
	ds.content,
	ds.price,
	ds.duration,
	ds.status,
	ds.created_at,
	ds.updated_at,
	CONCAT('` + mediaBaseURL + `', ds.image) AS image,
	lm.lang_meta_code
FROM doctor_services ds
	INNER JOIN doctor_service_packages dsp ON dsp.id = ds.service_package_id
	INNER JOIN language_meta lm ON lm.reference_id = ds.id
WHERE ds.service_package_id = ?
	AND lm.lang_meta_code = ?
	AND lm.reference_type = '` + refService + `'
	AND ds.status = 'published'
ORDER BY ds.created_at DESC`

	// Within each parent group the row with the highest sort order is the
	// header and must be published; the remaining rows are returned
	// regardless of status.
	serviceItemsQuery = `
SELECT * FROM (
	SELECT id, cate_id, service_id, package_id, title, parent_group_id, price, category_id, status,
		created_at, updated_at, service_content, sort_order, 1 AS is_header
	FROM (
		SELECT *, ROW_NUMBER() OVER (PARTITION BY parent_group_id ORDER BY sort_order DESC) AS rn
		FROM doctor_individual_services
		WHERE service_id = ? AND status = 'published'
	) headers
	WHERE rn = 1
	UNION ALL
	SELECT id, cate_id, service_id, package_id, title, parent_group_id, price, category_id, status,
		created_at, updated_at, service_content, sort_order, 0 AS is_header
	FROM (
		SELECT *, ROW_NUMBER() OVER (PARTITION BY parent_group_id ORDER BY sort_order DESC) AS rn
		FROM doctor_individual_services
		WHERE service_id = ?
	) children
	WHERE rn > 1
) items
ORDER BY parent_group_id ASC, sort_order DESC`
)

// ListPackagesBySpecialty returns the published packages of a specialty.
func (c *Content) ListPackagesBySpecialty(ctx context.Context, categoryID int, lang string) []models.ServicePackage {
	rows := c.q.Query(ctx, packagesBySpecialtyQuery, lang, categoryID)
	out := make([]models.ServicePackage, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.ServicePackage{
			ID:                   r.Int("id"),
			CateID:               r.Int("cate_id"),
			Name:                 r.String("name"),
			Description:          r.String("description"),
			Image:                r.String("image"),
			Status:               r.StringOr("status", "active"),
			CategoryID:           r.Int("category_id"),
			CategoryName:         r.String("category_name"),
			ClinicalSpecialtyRID: r.String("clinical_specialty_rid"),
			Language:             r.StringOr("lang_meta_code", lang),
			CreatedAt:            r.String("created_at"),
			UpdatedAt:            r.String("updated_at"),
		})
	}
	return out
}

// ListPackageServices returns the published services inside a package.
func (c *Content) ListPackageServices(ctx context.Context, packageID int, lang string) []models.PackageService {
	rows := c.q.Query(ctx, packageServicesQuery, packageID, lang)
	out := make([]models.PackageService, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.PackageService{
			ID:          r.Int("id"),
			CateID:      r.Int("cate_id"),
			Name:        r.String("name"),
			Description: r.String("description"),
			Content:     r.String("content"),
			Price:       r.Float("price"),
			Duration:    r.String("duration"),
			Status:      r.StringOr("status", "active"),
			Image:       r.String("image"),
			Language:    r.StringOr("lang_meta_code", lang),
			CreatedAt:   r.String("created_at"),
			UpdatedAt:   r.String("updated_at"),
		})
	}
	return out
}

// ListServiceItems returns the line items of a package service grouped by
// parent group, header first.
func (c *Content) ListServiceItems(ctx context.Context, packageServiceID int) []models.ServiceItem {
	rows := c.q.Query(ctx, serviceItemsQuery, packageServiceID, packageServiceID)
	out := make([]models.ServiceItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.ServiceItem{
			ID:             r.Int("id"),
			CateID:         r.Int("cate_id"),
			ServiceID:      r.Int("service_id"),
			PackageID:      r.Int("package_id"),
			Title:          r.String("title"),
			ParentGroupID:  r.Int("parent_group_id"),
			Price:          r.Float("price"),
			CategoryID:     r.Int("category_id"),
			Status:         r.String("status"),
			ServiceContent: r.String("service_content"),
			SortOrder:      r.Int("sort_order"),
			IsHeader:       r.Bool("is_header"),
			CreatedAt:      r.String("created_at"),
			UpdatedAt:      r.String("updated_at"),
		})
	}
	return out
}
