// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package api

import (
	"net/http"

	"github.com/tomtom215/carelink/internal/models"
)

// ListPackagesBySpecialty returns the service packages of a specialty.
// Not paginated; total is the number of rows returned.
func (h *Handler) ListPackagesBySpecialty(w http.ResponseWriter, r *http.Request, params []string) error {
	category, ok := requireID(w, params, categoryID)
	if !ok {
		return nil
	}

	lang := parseLanguage(r)
	packages := h.content.ListPackagesBySpecialty(r.Context(), category, lang)

	respondJSON(w, http.StatusOK, &Response{
		Success:    true,
		Data:       packages,
		Total:      intPtr(len(packages)),
		CategoryID: intPtr(category),
		Language:   lang,
	})
	return nil
}

// ListPackageServices returns the services bundled in a package.
func (h *Handler) ListPackageServices(w http.ResponseWriter, r *http.Request, params []string) error {
	pkg, ok := requireID(w, params, packageID)
	if !ok {
		return nil
	}

	lang := parseLanguage(r)
	services := h.content.ListPackageServices(r.Context(), pkg, lang)

	respondJSON(w, http.StatusOK, &Response{
		Success:   true,
		Data:      services,
		Total:     intPtr(len(services)),
		PackageID: intPtr(pkg),
		Language:  lang,
	})
	return nil
}

// serviceItemsData wraps line items the way the CMS export does.
type serviceItemsData struct {
	RawItems []models.ServiceItem `json:"raw_items"`
}

// ListServiceItems returns the line items of one package service.
func (h *Handler) ListServiceItems(w http.ResponseWriter, r *http.Request, params []string) error {
	id, ok := requireID(w, params, packageServiceID)
	if !ok {
		return nil
	}

	items := h.content.ListServiceItems(r.Context(), id)

	respondJSON(w, http.StatusOK, &Response{
		Success:          true,
		Data:             serviceItemsData{RawItems: items},
		TotalItems:       intPtr(len(items)),
		PackageServiceID: intPtr(id),
	})
	return nil
}
