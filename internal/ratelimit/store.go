// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrStoreClosed is returned by a store used after Close.
var ErrStoreClosed = errors.New("rate limit store closed")

// ErrInvalidKey rejects keys that are not safe as file names.
var ErrInvalidKey = errors.New("invalid rate limit key")

// Store persists the request timestamps (epoch seconds, oldest first) of
// each client key. Load returns nil for an unknown key. Implementations
// need not serialize writers to the same key; the Limiter does that.
type Store interface {
	Name() string
	Load(ctx context.Context, key string) ([]int64, error)
	Save(ctx context.Context, key string, stamps []int64) error

	// Sweep deletes records whose newest stamp is before cutoff and
	// returns how many were removed. The newest stamp is checked again
	// while lock holds the record's key, so a record rewritten after the
	// scan survives. A nil lock is allowed.
	Sweep(ctx context.Context, cutoff int64, lock KeyLocker) (int, error)

	Close() error
}

// validKey accepts the keys produced by StorageKey and similar plain names.
func validKey(key string) error {
	if key == "" || len(key) > 128 {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, c := range key {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}

// KeyLocker locks a record key against concurrent Allow calls and returns
// the matching unlock.
type KeyLocker func(key string) (unlock func())

func (lock KeyLocker) hold(key string) func() {
	if lock == nil {
		return func() {}
	}
	return lock(key)
}

func newest(stamps []int64) int64 {
	var max int64
	for _, s := range stamps {
		if s > max {
			max = s
		}
	}
	return max
}

// MemoryStore keeps records in process memory. Used in tests and when
// persistence across restarts is not wanted.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string][]int64
	closed  bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]int64)}
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Load(_ context.Context, key string) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	stamps := s.records[key]
	if stamps == nil {
		return nil, nil
	}
	return append([]int64(nil), stamps...), nil
}

func (s *MemoryStore) Save(_ context.Context, key string, stamps []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.records[key] = append([]int64(nil), stamps...)
	return nil
}

// Sweep checks and deletes under the store mutex, which already orders it
// with Save, so it does not take lock. Allow holds a key lock while it
// calls Save, and taking key locks here under s.mu would invert that order.
func (s *MemoryStore) Sweep(_ context.Context, cutoff int64, _ KeyLocker) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrStoreClosed
	}
	removed := 0
	for k, stamps := range s.records {
		if newest(stamps) < cutoff {
			delete(s.records, k)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.records = nil
	return nil
}
