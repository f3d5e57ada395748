// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/tomtom215/carelink/internal/logging"
	"github.com/tomtom215/carelink/internal/metrics"
	"github.com/tomtom215/carelink/internal/ratelimit"
	"github.com/tomtom215/carelink/internal/sanitize"
)

// Named middleware, referenced by the route table.
const (
	mwSecurity        = "security"
	mwRateLimit       = "rate_limit"
	mwInputValidation = "input_validation"
)

func (s *Server) registerGuards() {
	s.router.Use(mwSecurity, securityHeaders)
	s.router.Use(mwRateLimit, s.rateLimit)
	s.router.Use(mwInputValidation, s.inputValidation)
}

func securityHeaders(w http.ResponseWriter, _ *http.Request) bool {
	h := w.Header()
	h.Set("Content-Security-Policy", "default-src 'self'")
	h.Set("Access-Control-Max-Age", "86400")
	return true
}

// rateLimit admits the request or answers 429. Store failures never
// reject: the limiter already counted and logged them.
func (s *Server) rateLimit(w http.ResponseWriter, r *http.Request) bool {
	if s.limiter == nil || s.cfg.Security.RateLimitDisabled {
		return true
	}

	client := ratelimit.ClientKey(r, s.cfg.Security.TrustProxy)
	// A store error comes back with an allowing decision.
	decision, _ := s.limiter.Allow(r.Context(), ratelimit.StorageKey(client)) //nolint:errcheck // fail-open

	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	if decision.Allowed {
		return true
	}

	retry := int(math.Ceil(decision.RetryAfter.Seconds()))
	h.Set("Retry-After", strconv.Itoa(retry))
	metrics.RecordRejection(mwRateLimit)
	logging.Ctx(r.Context()).Warn().
		Str("client", client).
		Int("retry_after_seconds", retry).
		Msg("Rate limit exceeded")

	respondError(w, http.StatusTooManyRequests, "Rate limit exceeded", "Too many requests. Please try again later.")
	return false
}

// inputValidation rejects query keys, values or bodies matching a known
// injection pattern, then HTML-escapes the query for the handler.
func (s *Server) inputValidation(w http.ResponseWriter, r *http.Request) bool {
	if err := sanitize.Inspect(r, s.cfg.Security.MaxBodyBytes); err != nil {
		var finding sanitize.Finding
		event := logging.Ctx(r.Context()).Warn().Str("path", r.URL.Path)
		if errors.As(err, &finding) {
			event = event.Str("source", finding.Source).Str("field", finding.Field)
		} else {
			event = event.Err(err)
		}
		event.Msg("Malicious input rejected")
		metrics.RecordRejection(mwInputValidation)

		respondError(w, http.StatusBadRequest, "Invalid input detected", "Malicious input patterns detected")
		return false
	}

	sanitize.EscapeQuery(r)
	return true
}
