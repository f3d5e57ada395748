// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package api

import "github.com/tomtom215/carelink/internal/router"

var (
	healthGuards  = []string{mwSecurity, mwRateLimit}
	contentGuards = []string{mwSecurity, mwRateLimit, mwInputValidation}
)

// registerRoutes installs the public route table. Order matters: the first
// matching pattern wins.
func registerRoutes(rt *router.Router, h *Handler) {
	// Health
	rt.Get("api/v1/health", h.Health, healthGuards...)
	rt.Get("api/v1/health/database", h.HealthDatabase, healthGuards...)

	// Doctors
	rt.Get("api/v1/doctors", h.ListDoctors, contentGuards...)
	rt.Get("api/v1/doctors/{id}", h.GetDoctor, contentGuards...)

	// Specialties
	rt.Get("api/v1/specialties", h.ListSpecialties, contentGuards...)
	rt.Get("api/v1/specialties/{id}", h.GetSpecialty, contentGuards...)

	// Posts
	rt.Get("api/v1/posts", h.ListPosts, contentGuards...)
	rt.Get("api/v1/posts/{id}", h.GetPost, contentGuards...)
	rt.Get("api/v1/posts/category/{category_id}", h.ListPostsByCategory, contentGuards...)

	// Single services
	rt.Get("api/v1/singleservices", h.ListSingleServices, contentGuards...)
	rt.Get("api/v1/singleservices/{id}", h.GetSingleService, contentGuards...)

	// Packages
	rt.Get("api/v1/packages/specialty/{category_id}", h.ListPackagesBySpecialty, contentGuards...)
	rt.Get("api/v1/packages/services/{package_id}", h.ListPackageServices, contentGuards...)
	rt.Get("api/v1/packages/services/items/{package_service_id}", h.ListServiceItems, contentGuards...)
}
