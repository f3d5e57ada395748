// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package api

import "net/http"

// ListSpecialties returns all published specialties in the requested
// language. The list is not paginated; only lang and filter apply.
func (h *Handler) ListSpecialties(w http.ResponseWriter, r *http.Request, _ []string) error {
	q := parseListQuery(r, h.cfg.API)
	specialties := h.content.ListSpecialties(r.Context(), q.filter())

	respondJSON(w, http.StatusOK, &Response{
		Success:  true,
		Data:     specialties,
		Language: q.Language,
	})
	return nil
}

func (h *Handler) GetSpecialty(w http.ResponseWriter, r *http.Request, params []string) error {
	id, ok := requireID(w, params, specialtyID)
	if !ok {
		return nil
	}

	specialty := h.content.GetSpecialty(r.Context(), id)
	if specialty == nil {
		respondError(w, http.StatusNotFound, "Specialty not found", "The requested specialty does not exist")
		return nil
	}
	respondData(w, specialty)
	return nil
}
