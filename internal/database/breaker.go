// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package database

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/carelink/internal/logging"
	"github.com/tomtom215/carelink/internal/metrics"
)

// queryBreaker guards backend queries. While open, queries fail fast and
// the manager answers with an empty result.
type queryBreaker struct {
	cb *gobreaker.CircuitBreaker[[]Row]
}

// breakerSettings: 5 consecutive failures open the circuit for 30s; one
// probe request is allowed while half-open.
func newQueryBreaker(name string) *queryBreaker {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]Row](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A client that hung up is not the backend's fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", stateToString(from)).Str("to", stateToString(to)).
				Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	})
	return &queryBreaker{cb: cb}
}

// execute runs fn through the breaker; a nil receiver runs fn directly.
func (b *queryBreaker) execute(fn func() ([]Row, error)) ([]Row, error) {
	if b == nil {
		return fn()
	}
	return b.cb.Execute(fn)
}

func (b *queryBreaker) state() string {
	if b == nil {
		return "disabled"
	}
	return stateToString(b.cb.State())
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
