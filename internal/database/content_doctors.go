// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package database

import (
	"context"

	"github.com/tomtom215/carelink/internal/models"
)

const doctorColumns = `
	JSON_UNQUOTE(JSON_EXTRACT(em.meta_value, '$[0]')) AS empId,
	language_meta.lang_meta_code,
	d.id,
	d.name AS doctor_name,
	d.description,
	d.status,
	d.sort_order,
	d.views,
	CONCAT('` + mediaBaseURL + `', d.image) AS image,
	c.id AS specialty_id,
	c.name AS specialty_name,
	c.clinical_specialty_rid,
	d.created_at,
	d.updated_at,
	JSON_UNQUOTE(JSON_EXTRACT(ac.meta_value, '$[0]')) AS academic_rank,
	JSON_UNQUOTE(JSON_EXTRACT(a.meta_value, '$[0]')) AS academic_degree_value,
	JSON_UNQUOTE(JSON_EXTRACT(m.meta_value, '$[0]')) AS medical_specialty,
	JSON_UNQUOTE(JSON_EXTRACT(e.meta_value, '$[0]')) AS experience,
	REPLACE(JSON_UNQUOTE(JSON_EXTRACT(co.meta_value, '$[0]')), '<img src="/storage', '<img src="https://aih.com.vn/storage') AS content_doctor`

// The list joins academic_rank optionally; the detail query requires it.
const (
	doctorListJoins = `
FROM doctors d
	INNER JOIN doctors_post_categories dc ON dc.doctor_id = d.id
	INNER JOIN doctors_categories c ON c.id = dc.category_id
	INNER JOIN language_meta ON language_meta.reference_id = d.id
	INNER JOIN meta_boxes AS em ON em.reference_id = d.id AND em.meta_key = 'empId'
	LEFT JOIN meta_boxes AS ac ON ac.reference_id = d.id AND ac.meta_key = 'academic_rank'
	LEFT JOIN meta_boxes AS a ON a.reference_id = d.id AND a.meta_key = 'academic_degree'
	LEFT JOIN meta_boxes AS m ON m.reference_id = d.id AND m.meta_key = 'medical_specialty'
	LEFT JOIN meta_boxes AS e ON e.reference_id = d.id AND e.meta_key = 'experience'
	LEFT JOIN meta_boxes AS co ON co.reference_id = d.id AND co.meta_key = 'content_doctor'`

	doctorDetailJoins = `
FROM doctors d
	INNER JOIN doctors_post_categories dc ON dc.doctor_id = d.id
	INNER JOIN doctors_categories c ON c.id = dc.category_id
	INNER JOIN language_meta ON language_meta.reference_id = d.id
	INNER JOIN meta_boxes AS em ON em.reference_id = d.id AND em.meta_key = 'empId'
	INNER JOIN meta_boxes AS ac ON ac.reference_id = d.id AND ac.meta_key = 'academic_rank'
	LEFT JOIN meta_boxes AS a ON a.reference_id = d.id AND a.meta_key = 'academic_degree'
	LEFT JOIN meta_boxes AS m ON m.reference_id = d.id AND m.meta_key = 'medical_specialty'
	LEFT JOIN meta_boxes AS e ON e.reference_id = d.id AND e.meta_key = 'experience'
	LEFT JOIN meta_boxes AS co ON co.reference_id = d.id AND co.meta_key = 'content_doctor'`

	doctorWhere = `
WHERE d.status = 'published'
	AND language_meta.lang_meta_code = ?
	AND language_meta.reference_type = '` + refDoctor + `'`

	doctorFilter = ` AND (d.name LIKE ? OR d.description LIKE ?)`
)

// ListDoctors returns one page of published doctors and the total match count.
func (c *Content) ListDoctors(ctx context.Context, f ListFilter) ([]models.Doctor, int) {
	where := doctorWhere
	args := []interface{}{f.Language}
	if p := likePattern(f.Filter); p != "" {
		where += doctorFilter
		args = append(args, p, p)
	}

	rows := c.q.Query(ctx,
		"SELECT"+doctorColumns+doctorListJoins+where+"\nORDER BY d.sort_order DESC\nLIMIT ? OFFSET ?",
		append(args, f.Limit, f.Offset)...)
	total := c.q.QueryOne(ctx, "SELECT COUNT(DISTINCT d.id) AS total"+doctorListJoins+where, args...)

	out := make([]models.Doctor, 0, len(rows))
	for _, r := range rows {
		out = append(out, mapDoctor(r))
	}
	return out, countOr(total, len(rows))
}

// GetDoctor returns the doctor or nil when no row matches.
func (c *Content) GetDoctor(ctx context.Context, id int) *models.Doctor {
	row := c.q.QueryOne(ctx, "SELECT"+doctorColumns+doctorDetailJoins+"\nWHERE d.id = ?", id)
	if row == nil {
		return nil
	}
	d := mapDoctor(row)
	return &d
}

func mapDoctor(r Row) models.Doctor {
	return models.Doctor{
		ID:               r.Int("id"),
		EmployeeID:       r.String("empId"),
		Name:             r.StringOr("doctor_name", "Unknown Doctor"),
		Description:      r.String("description"),
		SpecialtyID:      r.Int("specialty_id"),
		SpecialtyName:    r.StringOr("specialty_name", "General"),
		Image:            r.String("image"),
		SortOrder:        r.Int("sort_order"),
		Views:            r.Int("views"),
		Status:           r.StringOr("status", "published"),
		CreatedAt:        r.String("created_at"),
		UpdatedAt:        r.String("updated_at"),
		AcademicRank:     r.String("academic_rank"),
		AcademicDegree:   r.String("academic_degree_value"),
		MedicalSpecialty: r.String("medical_specialty"),
		Experience:       r.String("experience"),
		ContentDoctor:    r.String("content_doctor"),
	}
}
