// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockService counts starts and can fail a fixed number of times first.
type mockService struct {
	name       string
	startCount atomic.Int32
	failCount  atomic.Int32
	maxFails   int32
}

func newMockService(name string, fails int) *mockService {
	return &mockService{name: name, maxFails: int32(fails)}
}

func (m *mockService) Serve(ctx context.Context) error {
	m.startCount.Add(1)
	if m.maxFails > 0 && m.failCount.Add(1) <= m.maxFails {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) StartCount() int32 { return m.startCount.Load() }

func (m *mockService) String() string { return m.name }
