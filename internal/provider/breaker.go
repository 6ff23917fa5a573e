// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

package provider

import (
	"sync"
	"time"

	"github.com/routeforge/gateway/types"
)

// Breaker is a per-provider circuit breaker: closed allows traffic and
// counts consecutive failures, open denies traffic until open_timeout
// elapses, half_open allows exactly one probe request through.
//
// Grounded on the teacher's llm/circuitbreaker.breaker mutex-guarded
// state machine, simplified to the can_execute/record_success/
// record_failure surface this core's selection loop needs (no generic
// Call(fn) wrapper, no half-open call quota beyond the single probe).
type Breaker struct {
	mu sync.Mutex

	cfg types.BreakerConfig

	state           types.BreakerState
	failureCount    int
	lastFailureTime time.Time
	probeInFlight   bool

	now func() time.Time
}

// NewBreaker creates a Breaker starting closed.
func NewBreaker(cfg types.BreakerConfig) *Breaker {
	return &Breaker{cfg: cfg, state: types.BreakerClosed, now: time.Now}
}

// CanExecute reports whether a call may proceed, applying the open →
// half_open transition if the timeout has elapsed. A true result from
// the half_open state marks a probe in flight; callers MUST follow up
// with RecordSuccess or RecordFailure.
func (b *Breaker) CanExecute() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case types.BreakerClosed:
		return true

	case types.BreakerOpen:
		if b.now().Sub(b.lastFailureTime) >= b.cfg.OpenTimeout {
			b.state = types.BreakerHalfOpen
			b.probeInFlight = true
			return true
		}
		return false

	case types.BreakerHalfOpen:
		if b.probeInFlight {
			return false
		}
		b.probeInFlight = true
		return true

	default:
		return false
	}
}

// RecordSuccess zeroes the failure count and closes the breaker,
// regardless of the prior state.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = types.BreakerClosed
	b.failureCount = 0
	b.probeInFlight = false
}

// RecordFailure increments the failure count and opens the breaker if
// the threshold is reached (from closed) or immediately (from
// half_open, where a probe failure always reopens).
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++
	b.lastFailureTime = b.now()
	b.probeInFlight = false

	switch b.state {
	case types.BreakerHalfOpen:
		b.state = types.BreakerOpen
	case types.BreakerClosed:
		if b.failureCount >= b.cfg.FailureThreshold {
			b.state = types.BreakerOpen
		}
	}
}

// State returns the current state without side effects (no open →
// half_open transition check).
func (b *Breaker) State() types.BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Available reports whether the breaker should be treated as a viable
// candidate for selection: true when closed, half_open, or open with
// its timeout already elapsed. Unlike CanExecute, this performs no
// state transition and marks no probe in flight — it exists so
// candidate filtering can consult "would this be excluded" without
// consuming the single half-open probe slot that CanExecute guards.
func (b *Breaker) Available() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != types.BreakerOpen {
		return true
	}
	return b.now().Sub(b.lastFailureTime) >= b.cfg.OpenTimeout
}
