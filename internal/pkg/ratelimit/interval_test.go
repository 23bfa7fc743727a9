package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeClock advances only when the limiter sleeps.
type fakeClock struct {
	mu  sync.Mutex
	t   time.Time
	log []time.Duration
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
	c.log = append(c.log, d)
	return nil
}

func newFakeLimiter(interval time.Duration) (*IntervalLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	l := NewIntervalLimiter(interval)
	l.now = clock.now
	l.sleep = clock.sleep
	return l, clock
}

func TestAcquire_FirstCallDoesNotWait(t *testing.T) {
	l, clock := newFakeLimiter(300 * time.Millisecond)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clock.log) != 0 {
		t.Errorf("first acquire should not sleep, slept %v", clock.log)
	}
}

func TestAcquire_BackToBackSpacing(t *testing.T) {
	l, clock := newFakeLimiter(300 * time.Millisecond)

	var stamps []time.Time
	for i := 0; i < 3; i++ {
		if err := l.Acquire(context.Background()); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
		stamps = append(stamps, clock.now())
	}

	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-1]); gap < 300*time.Millisecond {
			t.Errorf("acquires %d and %d only %v apart", i-1, i, gap)
		}
	}
}

func TestAcquire_NoWaitAfterIdle(t *testing.T) {
	l, clock := newFakeLimiter(300 * time.Millisecond)

	_ = l.Acquire(context.Background())
	clock.mu.Lock()
	clock.t = clock.t.Add(5 * time.Second)
	clock.mu.Unlock()

	slept := len(clock.log)
	_ = l.Acquire(context.Background())
	if len(clock.log) != slept {
		t.Errorf("acquire after idle period should not sleep")
	}
}

func TestAcquire_ConcurrentCallersSerialize(t *testing.T) {
	l, clock := newFakeLimiter(300 * time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Acquire(context.Background())
		}()
	}
	wg.Wait()

	// Five acquisitions from a cold start: the first is free, the rest
	// must each wait a full interval.
	var total time.Duration
	for _, d := range clock.log {
		total += d
	}
	if want := 4 * 300 * time.Millisecond; total < want {
		t.Errorf("total wait %v, want at least %v", total, want)
	}
}

func TestAcquire_ContextCancelled(t *testing.T) {
	l := NewIntervalLimiter(time.Hour)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Acquire(ctx); err == nil {
		t.Error("expected context error while waiting")
	}
}
