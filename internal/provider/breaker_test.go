package provider

import (
	"testing"
	"time"

	"github.com/routeforge/gateway/types"
)

func newTestBreaker(threshold int, timeout time.Duration) *Breaker {
	return NewBreaker(types.BreakerConfig{FailureThreshold: threshold, OpenTimeout: timeout})
}

func TestBreaker_StartsClosed(t *testing.T) {
	t.Parallel()
	b := newTestBreaker(3, time.Minute)
	if !b.CanExecute() {
		t.Fatalf("expected closed breaker to allow execution")
	}
	if b.State() != types.BreakerClosed {
		t.Fatalf("expected closed state, got %s", b.State())
	}
}

func TestBreaker_OpensAtThreshold(t *testing.T) {
	t.Parallel()
	b := newTestBreaker(3, time.Minute)

	b.RecordFailure()
	b.RecordFailure()
	if b.State() != types.BreakerClosed {
		t.Fatalf("expected still closed below threshold")
	}
	b.RecordFailure()
	if b.State() != types.BreakerOpen {
		t.Fatalf("expected open at threshold, got %s", b.State())
	}
	if b.CanExecute() {
		t.Fatalf("expected open breaker to deny execution")
	}
}

func TestBreaker_HalfOpenAfterTimeoutAllowsSingleProbe(t *testing.T) {
	t.Parallel()
	b := newTestBreaker(1, 10*time.Millisecond)
	fixedNow := time.Now()
	b.now = func() time.Time { return fixedNow }

	b.RecordFailure() // opens
	if b.State() != types.BreakerOpen {
		t.Fatalf("expected open")
	}

	b.now = func() time.Time { return fixedNow.Add(20 * time.Millisecond) }
	if !b.CanExecute() {
		t.Fatalf("expected half_open probe to be allowed after timeout")
	}
	if b.State() != types.BreakerHalfOpen {
		t.Fatalf("expected half_open state, got %s", b.State())
	}
	// A second concurrent caller must not get a second probe.
	if b.CanExecute() {
		t.Fatalf("expected only one probe in flight")
	}
}

func TestBreaker_HalfOpenProbeSuccessCloses(t *testing.T) {
	t.Parallel()
	b := newTestBreaker(1, time.Nanosecond)
	b.RecordFailure()
	time.Sleep(time.Millisecond)
	if !b.CanExecute() {
		t.Fatalf("expected probe allowed")
	}
	b.RecordSuccess()
	if b.State() != types.BreakerClosed {
		t.Fatalf("expected closed after successful probe, got %s", b.State())
	}
}

func TestBreaker_HalfOpenProbeFailureReopens(t *testing.T) {
	t.Parallel()
	b := newTestBreaker(1, time.Nanosecond)
	b.RecordFailure()
	time.Sleep(time.Millisecond)
	if !b.CanExecute() {
		t.Fatalf("expected probe allowed")
	}
	b.RecordFailure()
	if b.State() != types.BreakerOpen {
		t.Fatalf("expected reopened after failed probe, got %s", b.State())
	}
}
