package kis

import (
	"context"
	"testing"
	"time"
)

// testClock drives a limiter deterministically: sleeping advances the
// clock instead of waiting.
type testClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) attach(r *RateLimiter) {
	r.now = func() time.Time { return c.now }
	r.sleep = func(ctx context.Context, d time.Duration) error {
		c.sleeps = append(c.sleeps, d)
		c.now = c.now.Add(d)
		return nil
	}
}

func TestRateLimiterAllowsBurstUpToLimit(t *testing.T) {
	r := NewRateLimiter(4, time.Second)
	clock := newTestClock()
	clock.attach(r)

	for i := 0; i < 4; i++ {
		if err := r.Wait(context.Background()); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
	}
	if len(clock.sleeps) != 0 {
		t.Fatalf("expected no sleeps within the burst, got %v", clock.sleeps)
	}
}

func TestRateLimiterBlocksPastLimit(t *testing.T) {
	r := NewRateLimiter(4, time.Second)
	clock := newTestClock()
	clock.attach(r)

	for i := 0; i < 4; i++ {
		if err := r.Wait(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	// Fifth call must wait for the oldest slot plus the guard.
	if err := r.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(clock.sleeps) == 0 {
		t.Fatal("expected the fifth call to sleep")
	}
	want := time.Second + 50*time.Millisecond
	if clock.sleeps[0] != want {
		t.Fatalf("first sleep = %v, want %v", clock.sleeps[0], want)
	}
}

func TestRateLimiterWindowSlides(t *testing.T) {
	r := NewRateLimiter(2, time.Second)
	clock := newTestClock()
	clock.attach(r)

	if err := r.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	clock.now = clock.now.Add(1500 * time.Millisecond)
	if err := r.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := r.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	// The first call aged out, so the third proceeds without sleeping.
	if len(clock.sleeps) != 0 {
		t.Fatalf("expected no sleeps after the window slid, got %v", clock.sleeps)
	}
}

func TestRateLimiterHonorsCancellation(t *testing.T) {
	r := NewRateLimiter(1, time.Second)
	clock := newTestClock()
	clock.attach(r)
	r.sleep = func(ctx context.Context, d time.Duration) error {
		return ctx.Err()
	}

	if err := r.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Wait(ctx); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRateLimiterStatus(t *testing.T) {
	r := NewRateLimiter(4, time.Second)
	clock := newTestClock()
	clock.attach(r)

	for i := 0; i < 3; i++ {
		if err := r.Wait(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	used, capacity := r.Status()
	if used != 3 || capacity != 4 {
		t.Fatalf("Status() = (%d, %d), want (3, 4)", used, capacity)
	}

	clock.now = clock.now.Add(2 * time.Second)
	used, _ = r.Status()
	if used != 0 {
		t.Fatalf("Status() after window = %d used, want 0", used)
	}
}

func TestRateLimiterModeDefaults(t *testing.T) {
	_, capacity := NewRateLimiterForMode(ModePaper).Status()
	if capacity != 4 {
		t.Fatalf("paper capacity = %d, want 4", capacity)
	}
	_, capacity = NewRateLimiterForMode(ModeLive).Status()
	if capacity != 15 {
		t.Fatalf("live capacity = %d, want 15", capacity)
	}
}
