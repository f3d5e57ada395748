// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/cors"

	"github.com/tomtom215/carelink/internal/config"
	"github.com/tomtom215/carelink/internal/logging"
	"github.com/tomtom215/carelink/internal/middleware"
	"github.com/tomtom215/carelink/internal/ratelimit"
	"github.com/tomtom215/carelink/internal/router"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Deps are the collaborators the server needs beyond configuration.
type Deps struct {
	Store ContentStore

	// Limiter backs the rate_limit middleware; nil disables it.
	Limiter *ratelimit.Limiter
}

// Server is the dispatch entry point. It owns the failure boundary and the
// baseline headers and hands everything else to the router.
type Server struct {
	cfg     *config.Config
	router  *router.Router
	handler *Handler
	limiter *ratelimit.Limiter
	cors    func(http.Handler) http.Handler
	inner   http.Handler
	now     func() time.Time
}

// NewRouter returns a router whose matches are reported to the Prometheus
// middleware as route labels.
func NewRouter() *router.Router {
	return router.New(
		router.WithNotFound(writeNotFound),
		router.WithMatchHook(func(r *http.Request, pattern string) {
			middleware.SetRoute(r.Context(), pattern)
		}),
	)
}

// NewServer registers the named middleware and the content routes on rt
// and returns the entry point. It fails if a route names middleware that
// was never registered.
func NewServer(cfg *config.Config, rt *router.Router, deps Deps) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("api: nil config")
	}
	if rt == nil {
		rt = NewRouter()
	}
	if deps.Store == nil {
		return nil, errors.New("api: nil content store")
	}

	s := &Server{
		cfg:     cfg,
		router:  rt,
		handler: NewHandler(deps.Store, cfg),
		limiter: deps.Limiter,
		now:     time.Now,
		cors: cors.Handler(cors.Options{
			AllowedOrigins:     cfg.Security.CORSOrigins,
			AllowedMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With"},
			MaxAge:             86400,
			OptionsPassthrough: true,
		}),
	}
	s.inner = s.cors(http.HandlerFunc(s.dispatch))

	s.registerGuards()
	registerRoutes(rt, s.handler)
	if err := rt.Validate(); err != nil {
		return nil, fmt.Errorf("api: %w", err)
	}
	return s, nil
}

// Router exposes the route table, mainly for startup logging.
func (s *Server) Router() *router.Router { return s.router }

type startKey struct{}

// requestStart returns when the server began handling the request.
func requestStart(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(startKey{}).(time.Time)
	return t, ok
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r = r.WithContext(context.WithValue(r.Context(), startKey{}, s.now()))
	sw := &startedWriter{ResponseWriter: w}

	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity
			panic(rec)
		}
		s.fail(sw, r, fmt.Errorf("panic: %v", rec))
	}()

	setBaselineHeaders(w.Header())
	s.inner.ServeHTTP(sw, r)
}

// startedWriter records whether the response has begun, so a late failure
// does not append a second envelope to a body already on the wire.
type startedWriter struct {
	http.ResponseWriter
	started bool
}

func (w *startedWriter) WriteHeader(code int) {
	w.started = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *startedWriter) Write(b []byte) (int, error) {
	w.started = true
	return w.ResponseWriter.Write(b)
}

func (w *startedWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		w.started = true
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *startedWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func setBaselineHeaders(h http.Header) {
	h.Set("Content-Type", contentTypeJSON)
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-XSS-Protection", "1; mode=block")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	path := strings.Trim(r.URL.Path, "/")
	if err := s.router.Dispatch(w, r, r.Method, path); err != nil {
		s.fail(w, r, err)
	}
}

// fail writes the generic 500. The detail is only exposed in debug mode.
// Once the response has started only the log entry is written.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	started := false
	if sw, ok := w.(*startedWriter); ok {
		started = sw.started
	}
	logging.Ctx(r.Context()).Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Bool("response_started", started).
		Msg("Request failed")
	if started {
		return
	}

	detail := "Something went wrong"
	if s.cfg.App.Debug {
		detail = err.Error()
	}
	respondError(w, http.StatusInternalServerError, "Internal server error", detail)
}
