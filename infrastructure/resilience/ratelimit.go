package resilience

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter throttles admin API requests with a token bucket; system/api
// is its only user.
type Limiter struct {
	rl *rate.Limiter
}

// NewLimiter builds a token bucket allowing ratePerSecond sustained events
// with a burst of up to burst.
func NewLimiter(ratePerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{rl: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

// Allow reports whether an event may proceed right now without blocking.
func (l *Limiter) Allow() bool {
	return l.rl.Allow()
}

// Wait blocks until an event is permitted or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.rl.Wait(ctx)
}
