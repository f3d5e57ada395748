// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package api

import "net/http"

// ListDoctors returns a page of published doctors.
//
// Query: page, page_size, lang, filter (name or description)
func (h *Handler) ListDoctors(w http.ResponseWriter, r *http.Request, _ []string) error {
	q := parseListQuery(r, h.cfg.API)
	doctors, total := h.content.ListDoctors(r.Context(), q.filter())

	respondJSON(w, http.StatusOK, &filteredResponse{
		Response: Response{
			Success:  true,
			Data:     doctors,
			Total:    intPtr(total),
			Page:     intPtr(q.Page),
			PageSize: intPtr(q.PageSize),
			Language: q.Language,
		},
		Filter: q.filterValue(),
	})
	return nil
}

// GetDoctor returns one doctor by ID.
func (h *Handler) GetDoctor(w http.ResponseWriter, r *http.Request, params []string) error {
	id, ok := requireID(w, params, doctorID)
	if !ok {
		return nil
	}

	doctor := h.content.GetDoctor(r.Context(), id)
	if doctor == nil {
		respondError(w, http.StatusNotFound, "Doctor not found", "The requested doctor does not exist")
		return nil
	}
	respondData(w, doctor)
	return nil
}
