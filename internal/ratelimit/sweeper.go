// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package ratelimit

import (
	"context"
	"time"

	"github.com/tomtom215/carelink/internal/logging"
	"github.com/tomtom215/carelink/internal/metrics"
)

// gcRunner is implemented by stores that need periodic compaction.
type gcRunner interface {
	RunGC() error
}

// Sweeper periodically removes records that fell out of the window. It
// implements suture.Service.
type Sweeper struct {
	limiter  *Limiter
	interval time.Duration
}

// NewSweeper sweeps every interval; zero means once per window.
func NewSweeper(l *Limiter, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = l.Window()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{limiter: l, interval: interval}
}

// Serve runs until ctx is canceled.
func (s *Sweeper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce removes expired records and compacts the store.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	store := s.limiter.Store()
	cutoff := s.limiter.now().Add(-s.limiter.Window()).Unix()

	removed, err := store.Sweep(ctx, cutoff, s.limiter.lockKey)
	if removed > 0 {
		metrics.RateLimitRecordsSwept.Add(float64(removed))
	}
	if err != nil {
		metrics.RateLimitStoreErrors.WithLabelValues(store.Name(), "sweep").Inc()
		logging.Warn().Err(err).Str("store", store.Name()).Msg("Rate limit sweep failed")
	}

	if gc, ok := store.(gcRunner); ok {
		if err := gc.RunGC(); err != nil {
			logging.Warn().Err(err).Str("store", store.Name()).Msg("Rate limit store GC failed")
		}
	}

	if removed > 0 {
		logging.Debug().Int("removed", removed).Str("store", store.Name()).Msg("Swept rate limit records")
	}
	return removed
}

func (s *Sweeper) String() string {
	return "rate-limit-sweeper"
}
