package kis

import (
	"context"
	"sync"
	"time"
)

// Per-second request ceilings published by the brokerage for each
// environment.
const (
	rateLimitPaper = 4
	rateLimitLive  = 15

	// rateLimitGuard pads each computed wait so a request never lands
	// exactly on the window boundary.
	rateLimitGuard = 50 * time.Millisecond
)

// RateLimiter enforces a sliding one-second window over outgoing
// requests. Safe for concurrent use.
type RateLimiter struct {
	mu       sync.Mutex
	maxCalls int
	period   time.Duration
	calls    []time.Time

	// injectable for tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRateLimiter returns a limiter allowing maxCalls per period.
func NewRateLimiter(maxCalls int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		maxCalls: maxCalls,
		period:   period,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// NewRateLimiterForMode returns a limiter tuned to the environment's
// published ceiling.
func NewRateLimiterForMode(mode Mode) *RateLimiter {
	if mode == ModeLive {
		return NewRateLimiter(rateLimitLive, time.Second)
	}
	return NewRateLimiter(rateLimitPaper, time.Second)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until a request slot is available or ctx is cancelled.
// On success the slot is consumed.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.mu.Lock()
		now := r.now()
		r.evict(now)

		if len(r.calls) < r.maxCalls {
			r.calls = append(r.calls, now)
			r.mu.Unlock()
			return nil
		}

		// Oldest call leaves the window at calls[0]+period; wait until
		// then plus the guard, without holding the lock.
		wait := r.calls[0].Add(r.period).Sub(now) + rateLimitGuard
		r.mu.Unlock()

		if err := r.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// evict drops timestamps that have aged out of the window. Caller must
// hold r.mu.
func (r *RateLimiter) evict(now time.Time) {
	cutoff := now.Add(-r.period)
	i := 0
	for i < len(r.calls) && !r.calls[i].After(cutoff) {
		i++
	}
	if i > 0 {
		r.calls = append(r.calls[:0], r.calls[i:]...)
	}
}

// Status reports the slots currently consumed and the window capacity.
func (r *RateLimiter) Status() (used, capacity int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evict(r.now())
	return len(r.calls), r.maxCalls
}
