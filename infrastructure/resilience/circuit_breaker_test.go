package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCircuitBreakerStaysClosedOnSuccess(t *testing.T) {
	cb := New(DefaultConfig())

	err := cb.Execute(context.Background(), func() error {
		return nil
	})

	if err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("expected closed, got %v", cb.State())
	}
}

func TestCircuitBreakerOpensAfterMaxFailures(t *testing.T) {
	cb := New(Config{MaxFailures: 3, Timeout: time.Second})
	backendDown := errors.New("backend unreachable")

	for i := 0; i < 3; i++ {
		cb.Execute(context.Background(), func() error {
			return backendDown
		})
	}

	if cb.State() != StateOpen {
		t.Errorf("expected open, got %v", cb.State())
	}
}

func TestCircuitBreakerClosesAfterHalfOpenSuccesses(t *testing.T) {
	cb := New(Config{MaxFailures: 1, Timeout: 10 * time.Millisecond, HalfOpenMax: 2})

	cb.Execute(context.Background(), func() error {
		return errors.New("backend unreachable")
	})

	time.Sleep(20 * time.Millisecond)

	for i := 0; i < 2; i++ {
		cb.Execute(context.Background(), func() error {
			return nil
		})
	}

	if cb.State() != StateClosed {
		t.Errorf("expected closed after successes, got %v", cb.State())
	}
}

func TestCircuitBreakerRejectsWhileOpen(t *testing.T) {
	cb := New(Config{MaxFailures: 1, Timeout: time.Hour})

	cb.Execute(context.Background(), func() error {
		return errors.New("backend unreachable")
	})

	err := cb.Execute(context.Background(), func() error {
		return nil
	})

	if err != ErrCircuitOpen {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestCircuitBreakerRejectsExcessHalfOpenProbes(t *testing.T) {
	cb := New(Config{MaxFailures: 1, Timeout: 10 * time.Millisecond, HalfOpenMax: 1})

	cb.Execute(context.Background(), func() error {
		return errors.New("backend unreachable")
	})
	time.Sleep(20 * time.Millisecond)

	results := make(chan error, 2)
	release := make(chan struct{})
	for i := 0; i < 2; i++ {
		go func() {
			results <- cb.Execute(context.Background(), func() error {
				<-release
				return nil
			})
		}()
	}
	time.Sleep(10 * time.Millisecond) // let both goroutines reach beforeRequest
	close(release)

	var sawTooMany bool
	for i := 0; i < 2; i++ {
		if err := <-results; errors.Is(err, ErrTooManyRequests) {
			sawTooMany = true
		}
	}
	if !sawTooMany {
		t.Error("expected one of two concurrent half-open probes to be rejected")
	}
}

func TestBackendCBConfigEmitsStateChangeCallback(t *testing.T) {
	cfg := BackendCBConfig(BackendCircuitBreakerConfig{
		Domain:         "escrow",
		MaxFailures:    1,
		TimeoutSeconds: 0,
		HalfOpenMax:    1,
	})

	var seen State
	done := make(chan struct{})
	inner := cfg.OnStateChange
	cfg.OnStateChange = func(from, to State) {
		inner(from, to)
		seen = to
		close(done)
	}
	cb := New(cfg)

	cb.Execute(context.Background(), func() error {
		return errors.New("backend unreachable")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for state change callback")
	}

	if seen != StateOpen {
		t.Errorf("expected transition to open, got %v", seen)
	}
}
