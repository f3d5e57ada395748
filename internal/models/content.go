// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

// Package models defines the JSON shapes served by the content API. Field
// names follow the public contract of the existing mobile and web clients.
package models

// Doctor is a published doctor profile.
type Doctor struct {
	ID               int    `json:"id"`
	EmployeeID       string `json:"employee_id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	SpecialtyID      int    `json:"specialty_id"`
	SpecialtyName    string `json:"specialty_name"`
	Image            string `json:"image"`
	SortOrder        int    `json:"sort_order"`
	Views            int    `json:"views"`
	Status           string `json:"status"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
	AcademicRank     string `json:"academic_rank"`
	AcademicDegree   string `json:"academic_degree"`
	MedicalSpecialty string `json:"medical_specialty"`
	Experience       string `json:"experience"`
	ContentDoctor    string `json:"content_doctor"`
}

// Specialty is a clinical specialty (doctor category). Language is only
// populated in list responses.
type Specialty struct {
	ID                   int    `json:"id"`
	ClinicalSpecialtyRID int    `json:"clinical_specialty_rid"`
	Name                 string `json:"name"`
	Language             string `json:"language,omitempty"`
}

// Post is a published blog article.
type Post struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Content      string `json:"content"`
	Status       string `json:"status"`
	Image        string `json:"image"`
	Views        int    `json:"views"`
	IsFeatured   bool   `json:"is_featured"`
	CategoryID   int    `json:"category_id"`
	CategoryName string `json:"category_name"`
	Slug         string `json:"slug"`
	Tags         string `json:"tags"`
	Language     string `json:"language"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// SingleService is an individually bookable medical service.
type SingleService struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	CategoryID int     `json:"category_id"`
	Status     string  `json:"status"`
	Language   string  `json:"language"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

// ServicePackage is a health check package offered under a specialty.
type ServicePackage struct {
	ID                   int    `json:"id"`
	CateID               int    `json:"cate_id"`
	Name                 string `json:"name"`
	Description          string `json:"description"`
	Image                string `json:"image"`
	Status               string `json:"status"`
	CategoryID           int    `json:"category_id"`
	CategoryName         string `json:"category_name"`
	ClinicalSpecialtyRID string `json:"clinical_specialty_rid"`
	Language             string `json:"language"`
	CreatedAt            string `json:"created_at"`
	UpdatedAt            string `json:"updated_at"`
}

// PackageService is one service inside a package.
type PackageService struct {
	ID          int     `json:"id"`
	CateID      int     `json:"cate_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Content     string  `json:"content"`
	Price       float64 `json:"price"`
	Duration    string  `json:"duration"`
	Status      string  `json:"status"`
	Image       string  `json:"image"`
	Language    string  `json:"language"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// ServiceItem is one line of a package service. The first item of each
// parent group (highest sort order) is flagged as the group header.
type ServiceItem struct {
	ID             int     `json:"id"`
	CateID         int     `json:"cate_id"`
	ServiceID      int     `json:"service_id"`
	PackageID      int     `json:"package_id"`
	Title          string  `json:"title"`
	ParentGroupID  int     `json:"parent_group_id"`
	Price          float64 `json:"price"`
	CategoryID     int     `json:"category_id"`
	Status         string  `json:"status"`
	ServiceContent string  `json:"service_content"`
	SortOrder      int     `json:"sort_order"`
	IsHeader       bool    `json:"is_header"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}
