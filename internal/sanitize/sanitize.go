// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

// Package sanitize screens request input for SQL and script injection
// patterns and HTML-escapes query values before handlers read them.
//
// This is a coarse filter in front of parameterized queries, not a
// replacement for them. It rejects common words such as "select" and any
// quote or semicolon, which is acceptable for the read-only content API.
package sanitize

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
)

// ErrMaliciousInput is returned by Inspect when a pattern matches.
var ErrMaliciousInput = errors.New("malicious input patterns detected")

var dangerous = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|EXEC|UNION|SCRIPT)\b`),
	regexp.MustCompile(`['";]`),
	regexp.MustCompile(`--`),
	regexp.MustCompile(`/\*`),
	regexp.MustCompile(`\*/`),
}

// Detect reports whether s matches any dangerous pattern.
func Detect(s string) bool {
	for _, re := range dangerous {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// Finding names the input that matched.
type Finding struct {
	Source string // "query" or "body"
	Field  string
}

func (f Finding) Error() string {
	if f.Field == "" {
		return fmt.Sprintf("%s: %v", f.Source, ErrMaliciousInput)
	}
	return fmt.Sprintf("%s field %q: %v", f.Source, f.Field, ErrMaliciousInput)
}

func (f Finding) Unwrap() error { return ErrMaliciousInput }

// Inspect checks the decoded query keys and values and up to maxBody bytes
// of the body. The body is restored so handlers can still read it. A
// match returns a Finding; an unreadable body returns the read error.
func Inspect(r *http.Request, maxBody int64) error {
	for key, values := range r.URL.Query() {
		if Detect(key) {
			return Finding{Source: "query", Field: key}
		}
		for _, v := range values {
			if Detect(v) {
				return Finding{Source: "query", Field: key}
			}
		}
	}

	if r.Body == nil || r.Body == http.NoBody || maxBody <= 0 {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(body), r.Body), r.Body}

	if len(body) > 0 && Detect(string(body)) {
		return Finding{Source: "body"}
	}
	return nil
}

// EscapeValues HTML-escapes every value in place.
func EscapeValues(values url.Values) {
	for key, vs := range values {
		for i, v := range vs {
			vs[i] = html.EscapeString(v)
		}
		values[key] = vs
	}
}

// EscapeQuery rewrites the request's query string with escaped values.
func EscapeQuery(r *http.Request) {
	if r.URL.RawQuery == "" {
		return
	}
	q := r.URL.Query()
	EscapeValues(q)
	r.URL.RawQuery = q.Encode()
}
