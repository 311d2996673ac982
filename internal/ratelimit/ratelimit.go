package ratelimit

import (
	"sync"
	"time"
)

// Limiter gates requests by key. Allow reports whether the request may
// proceed and, when denied, how many seconds to wait before retrying
// (0 means no hint, omit the Retry-After header).
type Limiter interface {
	Allow(key string) (allowed bool, retryAfterSec int)
}

// Noop permits every request.
type Noop struct{}

func (Noop) Allow(key string) (bool, int) { return true, 0 }

// InMemory tracks request times per key in a sliding window. State lives in
// the process, so it only limits correctly on a single instance.
type InMemory struct {
	mu      sync.Mutex
	entries map[string][]time.Time
	limit   int
	window  time.Duration
	nowFunc func() time.Time
}

// NewInMemory creates a limiter allowing limit requests per key within
// window.
func NewInMemory(limit int, window time.Duration) *InMemory {
	return &InMemory{
		entries: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		nowFunc: time.Now,
	}
}

func (r *InMemory) Allow(key string) (allowed bool, retryAfterSec int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.nowFunc()
	cutoff := now.Add(-r.window)
	times := r.entries[key]
	i := 0
	for _, t := range times {
		if t.After(cutoff) {
			times[i] = t
			i++
		}
	}
	times = times[:i]
	if len(times) >= r.limit {
		oldest := times[0]
		retryAfter := oldest.Add(r.window).Sub(now)
		if retryAfter > 0 {
			retryAfterSec = int(retryAfter.Seconds())
			if retryAfterSec < 1 {
				retryAfterSec = 1
			}
		}
		return false, retryAfterSec
	}
	times = append(times, now)
	r.entries[key] = times
	return true, 0
}
