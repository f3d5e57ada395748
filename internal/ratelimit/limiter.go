// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

// Package ratelimit implements the per-client sliding window limiter.
//
// Each client key maps to the list of its request timestamps in a Store.
// A request is allowed while fewer than Limit stamps fall inside the
// window. Its stamp is recorded whether or not it was allowed, so clients
// retrying while limited stay limited. Load, decide and save run under a
// per-key lock; storage failures let the request through.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"hash/fnv"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/httprate"

	"github.com/tomtom215/carelink/internal/logging"
	"github.com/tomtom215/carelink/internal/metrics"
)

const shardCount = 256

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter is safe for concurrent use.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	now    func() time.Time

	shards [shardCount]sync.Mutex
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New returns a limiter allowing limit requests per window.
func New(store Store, limit int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		store:  store,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Limit is the configured request budget per window.
func (l *Limiter) Limit() int { return l.limit }

// Window is the configured window length.
func (l *Limiter) Window() time.Duration { return l.window }

// Store returns the backing store.
func (l *Limiter) Store() Store { return l.store }

func (l *Limiter) shard(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &l.shards[h.Sum32()%shardCount]
}

// lockKey takes the lock Allow holds for key. Stores call it through
// KeyLocker while sweeping.
func (l *Limiter) lockKey(key string) (unlock func()) {
	mu := l.shard(key)
	mu.Lock()
	return mu.Unlock
}

// Allow records a request for key and decides whether it may proceed.
// A non-nil error means the store failed; the decision then allows the
// request.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	mu := l.shard(key)
	mu.Lock()
	defer mu.Unlock()

	now := l.now().Unix()
	window := int64(l.window / time.Second)

	stamps, err := l.store.Load(ctx, key)
	if err != nil {
		l.storeFailed("load", key, err)
		return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit}, err
	}

	live := stamps[:0]
	for _, ts := range stamps {
		if now-ts < window {
			live = append(live, ts)
		}
	}

	d := Decision{Limit: l.limit, Allowed: len(live) < l.limit}

	live = append(live, now)
	if len(live) > l.limit {
		live = live[len(live)-l.limit:]
	}
	if d.Allowed {
		d.Remaining = l.limit - len(live)
	} else if len(live) > 0 {
		// The saved record includes this request, so the client is
		// under the limit again once its oldest saved stamp expires.
		d.RetryAfter = time.Duration(live[0]+window-now) * time.Second
		if d.RetryAfter < time.Second {
			d.RetryAfter = time.Second
		}
	}

	if err := l.store.Save(ctx, key, live); err != nil {
		l.storeFailed("save", key, err)
		d.Allowed = true
		return d, err
	}
	return d, nil
}

func (l *Limiter) storeFailed(op, key string, err error) {
	metrics.RateLimitStoreErrors.WithLabelValues(l.store.Name(), op).Inc()
	logging.Error().
		Err(err).
		Str("store", l.store.Name()).
		Str("operation", op).
		Str("key", key).
		Msg("Rate limit store failed, allowing request")
}

// ClientKey identifies the caller by remote address, or by the forwarded
// client address when the server sits behind a trusted proxy. A request
// without a usable address is "unknown".
func ClientKey(r *http.Request, trustProxy bool) string {
	keyFn := httprate.KeyByIP
	if trustProxy {
		keyFn = httprate.KeyByRealIP
	}
	key, err := keyFn(r)
	if err != nil || key == "" {
		return "unknown"
	}
	return key
}

// StorageKey hashes a client key into the name its record is stored under.
func StorageKey(clientKey string) string {
	sum := sha256.Sum256([]byte(clientKey))
	return "rate_limit_" + hex.EncodeToString(sum[:])
}
