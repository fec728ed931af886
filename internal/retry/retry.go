// Package retry holds the bounded retry policies used while waiting on
// asynchronous state (cart rehydration, hydration gating, reconnects).
package retry

import (
	"context"
	"time"
)

// Policy bounds a retry loop. Attempts are numbered from 1.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Exponential doubles the delay on every attempt (base, 2*base, 4*base...);
	// otherwise the delay grows linearly (base, 2*base, 3*base...).
	Exponential bool
	MaxDelay    time.Duration
}

// HydrationPolicy is the checkout hydration gate: 5 attempts, linear backoff.
var HydrationPolicy = Policy{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond}

// LoadPolicy is used for loading persisted state.
var LoadPolicy = Policy{MaxAttempts: 3, BaseDelay: 50 * time.Millisecond, Exponential: true}

// Delay returns how long to wait after the given failed attempt.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	var d time.Duration
	if p.Exponential {
		d = p.BaseDelay * time.Duration(1<<(attempt-1))
	} else {
		d = p.BaseDelay * time.Duration(attempt)
	}

	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Do runs fn until it reports done, the attempts run out or ctx ends.
// It returns whether fn reported done and the last error fn returned.
func Do(ctx context.Context, p Policy, fn func(attempt int) (bool, error)) (bool, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		done, err := fn(attempt)
		if done {
			return true, err
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		timer := time.NewTimer(p.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			if lastErr == nil {
				lastErr = ctx.Err()
			}
			return false, lastErr
		case <-timer.C:
		}
	}

	return false, lastErr
}
