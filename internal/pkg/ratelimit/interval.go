// Package ratelimit throttles outbound requests to the routing provider.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// DefaultMinInterval is the floor between outbound routing requests.
// The provider quota is account-wide and undisclosed; the service
// throttles itself conservatively instead of reacting to 429s.
const DefaultMinInterval = 300 * time.Millisecond

// Limiter gates outbound requests. Acquire blocks until the caller may
// proceed, or until the context is done.
type Limiter interface {
	Acquire(ctx context.Context) error
}

// IntervalLimiter enforces a minimum spacing between acquisitions,
// process-wide. It is a spacing throttle, not a token bucket: idle time
// never accumulates into a burst allowance. All orchestrations share one
// instance because the upstream budget is a single account-wide quota.
type IntervalLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewIntervalLimiter creates a limiter with the given minimum spacing.
func NewIntervalLimiter(interval time.Duration) *IntervalLimiter {
	return &IntervalLimiter{
		interval: interval,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Acquire blocks until at least the configured interval has elapsed since
// the previous Acquire returned. The mutex is held across the wait so the
// read-modify-write of the last-request timestamp is a single critical
// section and concurrent callers serialize.
func (l *IntervalLimiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.last.IsZero() {
		if wait := l.interval - l.now().Sub(l.last); wait > 0 {
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}
	l.last = l.now()
	return nil
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

// Nop is a pass-through limiter for tests and unthrottled setups.
type Nop struct{}

func (Nop) Acquire(ctx context.Context) error { return ctx.Err() }
