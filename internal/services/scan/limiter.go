package scan

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a token-bucket rate limiter shared across concurrent batch
// workers. It wraps x/time/rate with an injectable clock and sleeper so tests
// can drive it with virtual time; the underlying reservation accounting is
// safe for concurrent use.
type Limiter struct {
	limiter *rate.Limiter
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

// LimiterOption configures the limiter
type LimiterOption func(*Limiter)

// WithClock replaces the wall clock and sleeper, for tests.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) LimiterOption {
	return func(l *Limiter) {
		l.now = now
		l.sleep = sleep
	}
}

// NewLimiter creates a limiter refilling at perSec tokens per second with the
// given burst. A non-positive rate disables limiting.
func NewLimiter(perSec float64, burst int, opts ...LimiterOption) *Limiter {
	limit := rate.Limit(perSec)
	if perSec <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}

	l := &Limiter{
		limiter: rate.NewLimiter(limit, burst),
		now:     time.Now,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Wait blocks until a token is available or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r := l.limiter.ReserveN(l.now(), 1)
	if !r.OK() {
		return fmt.Errorf("rate limiter cannot satisfy request")
	}

	delay := r.DelayFrom(l.now())
	if delay <= 0 {
		return nil
	}

	if err := l.sleep(ctx, delay); err != nil {
		r.CancelAt(l.now())
		return err
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
