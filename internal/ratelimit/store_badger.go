// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const badgerKeyPrefix = "rl:"

// BadgerStore keeps records in an embedded BadgerDB. Each write carries a
// TTL of one window, so idle clients expire without the sweeper.
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenBadgerStore opens (or creates) a store at path. An empty path opens
// an in-memory database.
func OpenBadgerStore(path string, ttl time.Duration) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil
	opts.ValueLogFileSize = 16 << 20

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger rate limit store: %w", err)
	}
	return &BadgerStore{db: db, ttl: ttl}, nil
}

func (s *BadgerStore) Name() string { return "badger" }

func (s *BadgerStore) Load(_ context.Context, key string) ([]int64, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	var stamps []int64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		stamps, err = decodeItem(item)
		return err
	})
	if err != nil {
		return nil, s.wrap("load", err)
	}
	return stamps, nil
}

func (s *BadgerStore) Save(_ context.Context, key string, stamps []int64) error {
	if err := validKey(key); err != nil {
		return err
	}
	if stamps == nil {
		stamps = []int64{}
	}
	data, err := json.Marshal(stamps)
	if err != nil {
		return fmt.Errorf("encode rate limit record: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(badgerKeyPrefix+key), data)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
	return s.wrap("save", err)
}

func (s *BadgerStore) Sweep(ctx context.Context, cutoff int64, lock KeyLocker) (int, error) {
	var stale []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(badgerKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			item := it.Item()
			stamps, err := decodeItem(item)
			if err != nil || newest(stamps) < cutoff {
				stale = append(stale, strings.TrimPrefix(string(item.Key()), badgerKeyPrefix))
			}
		}
		return nil
	})
	if err != nil {
		return 0, s.wrap("sweep", err)
	}

	removed := 0
	for _, key := range stale {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		ok, err := s.sweepKey(key, cutoff, lock)
		if err != nil {
			return removed, s.wrap("sweep", err)
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

// sweepKey deletes key if its record is still stale once the key is locked.
func (s *BadgerStore) sweepKey(key string, cutoff int64, lock KeyLocker) (bool, error) {
	unlock := lock.hold(key)
	defer unlock()

	deleted := false
	err := s.db.Update(func(txn *badger.Txn) error {
		k := []byte(badgerKeyPrefix + key)
		item, err := txn.Get(k)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		stamps, err := decodeItem(item)
		if err == nil && newest(stamps) >= cutoff {
			return nil
		}
		deleted = true
		return txn.Delete(k)
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func decodeItem(item *badger.Item) ([]int64, error) {
	var stamps []int64
	err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &stamps)
	})
	return stamps, err
}

// RunGC reclaims value log space. badger.ErrNoRewrite (nothing to collect)
// is not an error.
func (s *BadgerStore) RunGC() error {
	err := s.db.RunValueLogGC(0.5)
	if err == nil || errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
		return nil
	}
	return s.wrap("gc", err)
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrStoreClosed
	}
	return fmt.Errorf("badger %s: %w", op, err)
}
