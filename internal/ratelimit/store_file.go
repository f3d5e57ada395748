// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/goccy/go-json"

	"github.com/tomtom215/carelink/internal/logging"
)

const recordExt = ".json"

// FileStore keeps one JSON array of epoch seconds per key in
// <dir>/<key>.json. Writes go to a temp file that is renamed over the
// record, so readers never see a partial file.
type FileStore struct {
	dir    string
	closed atomic.Bool
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create rate limit dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Name() string { return "file" }

func (s *FileStore) path(key string) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, key+recordExt), nil
}

func (s *FileStore) Load(_ context.Context, key string) ([]int64, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	return readRecord(p)
}

func readRecord(path string) ([]int64, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read rate limit record: %w", err)
	}
	var stamps []int64
	if err := json.Unmarshal(data, &stamps); err != nil {
		return nil, fmt.Errorf("decode rate limit record %s: %w", filepath.Base(path), err)
	}
	return stamps, nil
}

func (s *FileStore) Save(_ context.Context, key string, stamps []int64) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if stamps == nil {
		stamps = []int64{}
	}
	data, err := json.Marshal(stamps)
	if err != nil {
		return fmt.Errorf("encode rate limit record: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp record: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace rate limit record: %w", err)
	}
	return nil
}

func (s *FileStore) Sweep(ctx context.Context, cutoff int64, lock KeyLocker) (int, error) {
	if s.closed.Load() {
		return 0, ErrStoreClosed
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("list rate limit dir: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, recordExt) {
			continue
		}
		ok, err := s.sweepRecord(strings.TrimSuffix(name, recordExt), cutoff, lock)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

// sweepRecord removes one record if it is still stale once its key is
// locked.
func (s *FileStore) sweepRecord(key string, cutoff int64, lock KeyLocker) (bool, error) {
	unlock := lock.hold(key)
	defer unlock()

	p := filepath.Join(s.dir, key+recordExt)
	stamps, err := readRecord(p)
	if err != nil {
		// A corrupt record would otherwise be retried forever.
		logging.Warn().Err(err).Str("file", key+recordExt).Msg("Removing unreadable rate limit record")
	} else if newest(stamps) >= cutoff {
		return false, nil
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("remove rate limit record: %w", err)
	}
	return true, nil
}

func (s *FileStore) Close() error {
	s.closed.Store(true)
	return nil
}
