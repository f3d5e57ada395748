// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package ratelimit

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock is a settable clock for tests.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClock() *fixedClock {
	return &fixedClock{now: time.Unix(1_760_000_000, 0)}
}

func seed(n int, at int64) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = at
	}
	return out
}

func TestAllow_AcceptsAtLimitMinusOne(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := newClock()
	store := NewMemoryStore()
	l := New(store, 60, time.Minute, WithClock(clock.Now))

	require.NoError(t, store.Save(ctx, "k", seed(59, clock.Now().Unix()-10)))

	d, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	stamps, _ := store.Load(ctx, "k")
	assert.Len(t, stamps, 60)
}

func TestAllow_RejectsAtLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := newClock()
	store := NewMemoryStore()
	l := New(store, 60, time.Minute, WithClock(clock.Now))

	first := clock.Now().Unix() - 10
	require.NoError(t, store.Save(ctx, "k", seed(60, first)))

	d, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, 50*time.Second, d.RetryAfter)

	stamps, _ := store.Load(ctx, "k")
	assert.Len(t, stamps, 60, "record is capped at the limit")
	assert.Equal(t, clock.Now().Unix(), stamps[len(stamps)-1], "the rejected attempt is recorded")
}

func TestAllow_SixtyFirstRequestRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := newClock()
	l := New(NewMemoryStore(), 60, time.Minute, WithClock(clock.Now))

	for i := 0; i < 60; i++ {
		d, err := l.Allow(ctx, "client")
		require.NoError(t, err)
		require.True(t, d.Allowed, "request %d", i+1)
		clock.Advance(500 * time.Millisecond)
	}
	d, _ := l.Allow(ctx, "client")
	assert.False(t, d.Allowed)

	d, _ = l.Allow(ctx, "other-client")
	assert.True(t, d.Allowed, "limits are per key")
}

func TestAllow_RejectedRetriesKeepClientLimited(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := newClock()
	l := New(NewMemoryStore(), 3, 10*time.Second, WithClock(clock.Now))

	for i := 0; i < 3; i++ {
		d, _ := l.Allow(ctx, "k")
		require.True(t, d.Allowed)
	}

	// Retrying faster than limit per window never lets the client back in,
	// even after the original stamps expire.
	for i := 0; i < 8; i++ {
		clock.Advance(2 * time.Second)
		d, _ := l.Allow(ctx, "k")
		assert.False(t, d.Allowed, "retry %d", i)
	}

	clock.Advance(11 * time.Second)
	d, _ := l.Allow(ctx, "k")
	assert.True(t, d.Allowed, "a quiet window resets the client")
}

func TestAllow_RetryAfterIsHonored(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := newClock()
	l := New(NewMemoryStore(), 3, 10*time.Second, WithClock(clock.Now))

	for i := 0; i < 3; i++ {
		d, _ := l.Allow(ctx, "k")
		require.True(t, d.Allowed, "request %d", i+1)
		clock.Advance(time.Second)
	}

	// Stamps are t+0, t+1, t+2. The rejected request at t+3 replaces t+0,
	// so the client is free once t+1 expires.
	d, _ := l.Allow(ctx, "k")
	require.False(t, d.Allowed)
	assert.Equal(t, 8*time.Second, d.RetryAfter)

	clock.Advance(d.RetryAfter - time.Second)
	early, _ := l.Allow(ctx, "k")
	assert.False(t, early.Allowed, "retrying before Retry-After is still limited")
}

func TestAllow_RetryAfterSpreadStamps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := newClock()
	l := New(NewMemoryStore(), 3, 10*time.Second, WithClock(clock.Now))

	for i := 0; i < 3; i++ {
		d, _ := l.Allow(ctx, "k")
		require.True(t, d.Allowed)
		clock.Advance(time.Second)
	}
	d, _ := l.Allow(ctx, "k")
	require.False(t, d.Allowed)

	clock.Advance(d.RetryAfter)
	d, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, d.Allowed, "a client waiting Retry-After is let back in")
}

func TestAllow_PrunesExpiredStamps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := newClock()
	store := NewMemoryStore()
	l := New(store, 2, time.Minute, WithClock(clock.Now))

	now := clock.Now().Unix()
	require.NoError(t, store.Save(ctx, "k", []int64{now - 120, now - 60, now - 59}))

	d, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, d.Allowed, "a stamp exactly one window old has expired")

	stamps, _ := store.Load(ctx, "k")
	assert.Equal(t, []int64{now - 59, now}, stamps)
}

// failingStore fails the configured operation.
type failingStore struct {
	*MemoryStore
	failLoad, failSave bool
}

func (f *failingStore) Load(ctx context.Context, key string) ([]int64, error) {
	if f.failLoad {
		return nil, errors.New("disk full")
	}
	return f.MemoryStore.Load(ctx, key)
}

func (f *failingStore) Save(ctx context.Context, key string, s []int64) error {
	if f.failSave {
		return errors.New("read-only file system")
	}
	return f.MemoryStore.Save(ctx, key, s)
}

func TestAllow_StoreFailureFailsOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for _, tc := range []struct {
		name string
		s    *failingStore
	}{
		{"load", &failingStore{MemoryStore: NewMemoryStore(), failLoad: true}},
		{"save", &failingStore{MemoryStore: NewMemoryStore(), failSave: true}},
	} {
		l := New(tc.s, 1, time.Minute)
		for i := 0; i < 3; i++ {
			d, err := l.Allow(ctx, "k")
			assert.Error(t, err, tc.name)
			assert.True(t, d.Allowed, tc.name)
		}
	}
}

func TestAllow_ConcurrentSameKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := newClock()
	l := New(NewMemoryStore(), 50, time.Minute, WithClock(clock.Now))

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d, _ := l.Allow(ctx, "shared"); d.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 50, allowed.Load())
}

func TestClientKey(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/api/v1/doctors", nil)
	r.RemoteAddr = "203.0.113.9:52311"
	r.Header.Set("X-Forwarded-For", "198.51.100.4")

	assert.Equal(t, "203.0.113.9", ClientKey(r, false))
	assert.Equal(t, "198.51.100.4", ClientKey(r, true))

	r.RemoteAddr = ""
	assert.Equal(t, "unknown", ClientKey(r, false))
}

func TestStorageKey(t *testing.T) {
	t.Parallel()

	k := StorageKey("203.0.113.9")
	assert.True(t, strings.HasPrefix(k, "rate_limit_"))
	assert.Len(t, k, len("rate_limit_")+64)
	assert.Equal(t, k, StorageKey("203.0.113.9"))
	assert.NotEqual(t, k, StorageKey("203.0.113.10"))
	assert.NoError(t, validKey(k))
}
