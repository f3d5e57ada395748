// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package api

import "net/http"

// ListPosts returns a page of published posts.
//
// Query: page, page_size, lang, filter (name, description or content)
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request, _ []string) error {
	q := parseListQuery(r, h.cfg.API)
	posts, total := h.content.ListPosts(r.Context(), q.filter())

	respondJSON(w, http.StatusOK, &filteredResponse{
		Response: Response{
			Success:  true,
			Data:     posts,
			Total:    intPtr(total),
			Page:     intPtr(q.Page),
			PageSize: intPtr(q.PageSize),
			Language: q.Language,
		},
		Filter: q.filterValue(),
	})
	return nil
}

// GetPost returns one post by ID.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request, params []string) error {
	id, ok := requireID(w, params, postID)
	if !ok {
		return nil
	}

	post := h.content.GetPost(r.Context(), id)
	if post == nil {
		respondError(w, http.StatusNotFound, "Post not found", "The requested post does not exist")
		return nil
	}
	respondData(w, post)
	return nil
}

// ListPostsByCategory returns a page of the posts filed under a category.
// The filter parameter is not supported here.
func (h *Handler) ListPostsByCategory(w http.ResponseWriter, r *http.Request, params []string) error {
	category, ok := requireID(w, params, categoryID)
	if !ok {
		return nil
	}

	q := parseListQuery(r, h.cfg.API)
	q.Filter = ""
	posts, total := h.content.ListPostsByCategory(r.Context(), category, q.filter())

	respondJSON(w, http.StatusOK, &Response{
		Success:    true,
		Data:       posts,
		Total:      intPtr(total),
		Page:       intPtr(q.Page),
		PageSize:   intPtr(q.PageSize),
		Language:   q.Language,
		CategoryID: intPtr(category),
	})
	return nil
}
