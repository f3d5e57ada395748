// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package api

import (
	"bytes"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/carelink/internal/logging"
)

// Response is the success envelope. Optional members are omitted when
// unset; endpoints fill the ones they report.
type Response struct {
	Success          bool        `json:"success"`
	Data             interface{} `json:"data"`
	Total            *int        `json:"total,omitempty"`
	Page             *int        `json:"page,omitempty"`
	PageSize         *int        `json:"page_size,omitempty"`
	Language         string      `json:"language,omitempty"`
	CategoryID       *int        `json:"category_id,omitempty"`
	PackageID        *int        `json:"package_id,omitempty"`
	PackageServiceID *int        `json:"package_service_id,omitempty"`
	TotalItems       *int        `json:"total_items,omitempty"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// filteredResponse adds the always-present filter member of the
// searchable list endpoints (null when no filter was given).
type filteredResponse struct {
	Response
	Filter *string `json:"filter"`
}

func intPtr(v int) *int { return &v }

// encodeJSON renders v without HTML escaping so content markup and
// Vietnamese text pass through unchanged.
func encodeJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// respondJSON writes v with status. Content-Type is part of the baseline
// headers and set again here for writers used outside Server.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := encodeJSON(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError writes a {success:false,message,error} body.
func respondError(w http.ResponseWriter, status int, message, detail string) {
	respondJSON(w, status, &ErrorResponse{
		Success: false,
		Message: message,
		Error:   detail,
	})
}

// respondData writes {success:true,data}.
func respondData(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, &Response{Success: true, Data: data})
}

// writeNotFound is the router's 404 for unmatched endpoints.
func writeNotFound(w http.ResponseWriter, _ *http.Request) {
	respondError(w, http.StatusNotFound, "Endpoint not found", "The requested endpoint does not exist")
}
