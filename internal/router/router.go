// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

// Package router implements the ordered route table behind the content API.
//
// Routes are matched by a linear scan in registration order; the first
// route whose method and anchored pattern match wins. Placeholders such as
// {id} capture one path segment and are handed to the handler positionally,
// left to right. Each route names its middleware; a middleware that returns
// false has already written the response and stops dispatch.
package router

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// ErrInvalidPattern is returned for a pattern that cannot be compiled.
var ErrInvalidPattern = errors.New("invalid route pattern")

// HandlerFunc serves a matched route. params holds the placeholder values
// in pattern order. A returned error is passed through Dispatch unchanged.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, params []string) error

// Middleware runs before the handler. Returning false aborts dispatch; the
// middleware is responsible for the response it wrote.
type Middleware func(w http.ResponseWriter, r *http.Request) bool

// Route is one entry of the route table.
type Route struct {
	Method     string
	Pattern    string
	Middleware []string

	handler HandlerFunc
	re      *regexp.Regexp
}

// Router is safe for concurrent Dispatch once registration is finished.
type Router struct {
	mu         sync.RWMutex
	routes     []*Route
	middleware map[string]Middleware
	notFound   http.HandlerFunc
	onMatch    func(r *http.Request, pattern string)
}

// Option configures a Router.
type Option func(*Router)

// WithNotFound replaces the default 404 writer.
func WithNotFound(h http.HandlerFunc) Option {
	return func(r *Router) {
		r.notFound = h
	}
}

// WithMatchHook calls fn with the pattern of every matched route before
// its middleware runs.
func WithMatchHook(fn func(r *http.Request, pattern string)) Option {
	return func(r *Router) {
		r.onMatch = fn
	}
}

// New returns an empty router.
func New(opts ...Option) *Router {
	r := &Router{
		middleware: make(map[string]Middleware),
		notFound:   writeNotFound,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var placeholder = regexp.MustCompile(`\{[^}/]+\}`)

// compilePattern turns "api/v1/doctors/{id}" into ^api/v1/doctors/([^/]+)$.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteByte('^')
	last := 0
	for _, loc := range append(placeholder.FindAllStringIndex(pattern, -1), []int{len(pattern), len(pattern)}) {
		literal := pattern[last:loc[0]]
		// A brace left in literal text is an unterminated placeholder.
		if strings.ContainsAny(literal, "{}") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
		}
		b.WriteString(regexp.QuoteMeta(literal))
		if loc[1] > loc[0] {
			b.WriteString(`([^/]+)`)
		}
		last = loc[1]
	}
	b.WriteByte('$')

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
	}
	return re, nil
}

// AddRoute appends a route. Registration order is match priority.
func (rt *Router) AddRoute(method, pattern string, h HandlerFunc, middleware ...string) error {
	if h == nil {
		return fmt.Errorf("route %s %s: nil handler", method, pattern)
	}
	re, err := compilePattern(pattern)
	if err != nil {
		return err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.routes = append(rt.routes, &Route{
		Method:     strings.ToUpper(method),
		Pattern:    pattern,
		Middleware: append([]string(nil), middleware...),
		handler:    h,
		re:         re,
	})
	return nil
}

// MustAddRoute is AddRoute for static route tables; it panics on error.
func (rt *Router) MustAddRoute(method, pattern string, h HandlerFunc, middleware ...string) {
	if err := rt.AddRoute(method, pattern, h, middleware...); err != nil {
		panic(err)
	}
}

// Get registers a GET route.
func (rt *Router) Get(pattern string, h HandlerFunc, middleware ...string) {
	rt.MustAddRoute(http.MethodGet, pattern, h, middleware...)
}

// Use registers a named middleware, replacing any previous one.
func (rt *Router) Use(name string, mw Middleware) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.middleware[name] = mw
}

// Routes returns a copy of the route table in match order.
func (rt *Router) Routes() []Route {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	out := make([]Route, 0, len(rt.routes))
	for _, r := range rt.routes {
		cp := *r
		cp.Middleware = append([]string(nil), r.Middleware...)
		out = append(out, cp)
	}
	return out
}

// Validate reports middleware names referenced by routes but never
// registered. Dispatch skips such names, so a typo silently disables a
// check; servers call Validate at startup.
func (rt *Router) Validate() error {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	missing := make(map[string]struct{})
	for _, r := range rt.routes {
		for _, name := range r.Middleware {
			if _, ok := rt.middleware[name]; !ok {
				missing[name] = struct{}{}
			}
		}
	}
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	for n := range missing {
		names = append(names, n)
	}
	sort.Strings(names)
	return fmt.Errorf("unregistered middleware: %s", strings.Join(names, ", "))
}

// match returns the first route for method and path with its captures.
func (rt *Router) match(method, path string) (*Route, []string, []Middleware) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	for _, r := range rt.routes {
		if r.Method != method {
			continue
		}
		m := r.re.FindStringSubmatch(path)
		if m == nil {
			continue
		}
		chain := make([]Middleware, 0, len(r.Middleware))
		for _, name := range r.Middleware {
			if mw, ok := rt.middleware[name]; ok {
				chain = append(chain, mw)
			}
		}
		return r, m[1:], chain
	}
	return nil, nil, nil
}

// Dispatch routes a normalized path (no leading or trailing slash, no
// query). A handler error is returned as is; an unmatched request gets a
// single 404 response and a nil error.
func (rt *Router) Dispatch(w http.ResponseWriter, r *http.Request, method, path string) error {
	route, params, chain := rt.match(strings.ToUpper(method), path)
	if route == nil {
		rt.notFound(w, r)
		return nil
	}
	if rt.onMatch != nil {
		rt.onMatch(r, route.Pattern)
	}

	for _, mw := range chain {
		if !mw(w, r) {
			return nil
		}
	}
	return route.handler(w, r, params)
}

// notFoundBody is pre-encoded; HTML characters are not escaped.
const notFoundBody = `{"success":false,"message":"Endpoint not found","error":"The requested endpoint does not exist"}`

func writeNotFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(notFoundBody))
}
