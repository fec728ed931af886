// Package ratelimiter limits requests per client key.
package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Limiter interface {
	// Allow reports whether a request from key may proceed and, if not,
	// how long the client should wait.
	Allow(key string) (bool, time.Duration)
}

type Config struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TokenBucketLimiter allows RequestsPerTimeFrame requests per TimeFrame for
// each key, refilling continuously.
type TokenBucketLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idle     time.Duration
}

func NewTokenBucketLimiter(requests int, timeFrame time.Duration) *TokenBucketLimiter {
	if requests < 1 {
		requests = 1
	}
	if timeFrame <= 0 {
		timeFrame = time.Second
	}

	return &TokenBucketLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(requests) / timeFrame.Seconds()),
		burst:    requests,
		idle:     10 * timeFrame,
	}
}

func (l *TokenBucketLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	r := v.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Cleanup forgets keys that have been idle for ten time frames.
func (l *TokenBucketLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-l.idle)
	for k, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, k)
		}
	}
}

// StartCleanup runs Cleanup every interval until stop is closed.
func (l *TokenBucketLimiter) StartCleanup(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				l.Cleanup()
			}
		}
	}()
}
