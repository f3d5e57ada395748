// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package api

import "net/http"

// ListSingleServices returns a page of published single services.
//
// Query: page, page_size, lang, filter (name)
func (h *Handler) ListSingleServices(w http.ResponseWriter, r *http.Request, _ []string) error {
	q := parseListQuery(r, h.cfg.API)
	services, total := h.content.ListSingleServices(r.Context(), q.filter())

	respondJSON(w, http.StatusOK, &filteredResponse{
		Response: Response{
			Success:  true,
			Data:     services,
			Total:    intPtr(total),
			Page:     intPtr(q.Page),
			PageSize: intPtr(q.PageSize),
			Language: q.Language,
		},
		Filter: q.filterValue(),
	})
	return nil
}

func (h *Handler) GetSingleService(w http.ResponseWriter, r *http.Request, params []string) error {
	id, ok := requireID(w, params, serviceID)
	if !ok {
		return nil
	}

	service := h.content.GetSingleService(r.Context(), id)
	if service == nil {
		respondError(w, http.StatusNotFound, "Single service not found", "The requested single service does not exist")
		return nil
	}
	respondData(w, service)
	return nil
}
