// Package retry implements a bounded retry policy with exponential backoff.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy retries an operation up to MaxAttempts times, sleeping between
// attempts with an exponentially growing delay capped at MaxDelay.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// sleep is swapped out in tests to avoid real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPolicy creates a Policy with the given bounds.
func NewPolicy(maxAttempts int, baseDelay, maxDelay time.Duration) *Policy {
	return &Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		MaxDelay:    maxDelay,
		sleep:       sleepCtx,
	}
}

// WithSleep overrides the sleep function. Intended for tests.
func (p *Policy) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *Policy {
	p.sleep = sleep
	return p
}

// Do runs fn until it succeeds or MaxAttempts is exhausted. The last
// error is returned as-is so callers can distinguish failure classes;
// a cancelled context aborts the wait immediately.
func (p *Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == p.MaxAttempts {
			break
		}

		delay := p.BaseDelay << (attempt - 1)
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}

		if err := p.sleep(ctx, delay); err != nil {
			return fmt.Errorf("retry wait aborted: %w", err)
		}
	}

	return lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
