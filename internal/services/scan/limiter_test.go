package scan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// virtualClock drives the limiter without real sleeping: each recorded sleep
// advances the clock by the requested delay.
type virtualClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newVirtualClock() *virtualClock {
	return &virtualClock{now: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *virtualClock) Now() time.Time { return c.now }

func (c *virtualClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func TestLimiter_FirstRequestIsImmediate(t *testing.T) {
	clock := newVirtualClock()
	limiter := NewLimiter(2, 1, WithClock(clock.Now, clock.Sleep))

	require.NoError(t, limiter.Wait(context.Background()))
	assert.Empty(t, clock.sleeps, "a full bucket must not delay the first request")
}

func TestLimiter_SpacesRequestsAtConfiguredRate(t *testing.T) {
	clock := newVirtualClock()
	limiter := NewLimiter(2, 1, WithClock(clock.Now, clock.Sleep))

	for i := 0; i < 4; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}

	// At 2 tokens/sec with burst 1, every request after the first waits for
	// the 500ms refill.
	require.Len(t, clock.sleeps, 3)
	for _, d := range clock.sleeps {
		assert.Equal(t, 500*time.Millisecond, d)
	}
}

func TestLimiter_ZeroRateNeverDelays(t *testing.T) {
	clock := newVirtualClock()
	limiter := NewLimiter(0, 1, WithClock(clock.Now, clock.Sleep))

	for i := 0; i < 100; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}
	assert.Empty(t, clock.sleeps)
}

func TestLimiter_CancelledContext(t *testing.T) {
	clock := newVirtualClock()
	limiter := NewLimiter(2, 1, WithClock(clock.Now, clock.Sleep))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, limiter.Wait(ctx), context.Canceled)
}
