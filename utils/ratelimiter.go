package utils

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter keeps a fixed pause between outgoing requests
type RateLimiter struct {
	limiter *rate.Limiter
	limit   rate.Limit
	delay   time.Duration
}

// NewRateLimiter creates a RateLimiter with the given delay in milliseconds.
// The first Wait returns immediately.
func NewRateLimiter(delayMs int) *RateLimiter {
	delay := time.Duration(delayMs) * time.Millisecond
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(limit, 1),
		limit:   limit,
		delay:   delay,
	}
}

// Delay returns the configured interval between requests
func (r *RateLimiter) Delay() time.Duration {
	return r.delay
}

// Wait blocks until the delay has passed since the previous request
// started, or since the last Restart.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// Restart starts a full interval now. Call it when a request finishes so
// slow responses do not shorten the pause before the next one.
func (r *RateLimiter) Restart() {
	r.limiter = rate.NewLimiter(r.limit, 1)
	r.limiter.Allow()
}
