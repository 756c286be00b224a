package ratelimit

import (
	"sync"
	"time"
)

// sweepFloor is the key count at which Take first sweeps every bucket.
const sweepFloor = 1024

// Tracker holds per-key request timestamps for sliding-window limits.
// It is safe for concurrent use and owns its own locking; callers inject a
// Tracker rather than sharing package state.
//
// Keys that go idle are dropped by a sweep once the key count doubles since
// the previous sweep, so memory stays proportional to recently active keys.
type Tracker struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	sweepAt int
}

type bucket struct {
	window time.Duration
	stamps []time.Time
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{buckets: make(map[string]*bucket), sweepAt: sweepFloor}
}

// Snapshot prunes entries older than window and returns the remaining count.
func (t *Tracker) Snapshot(key string, window time.Duration, now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.prune(key, window, now))
}

// Take records a request for key if fewer than max requests fall inside the
// window ending at now. It returns the count observed before recording and
// whether the request was admitted.
func (t *Tracker) Take(key string, max int, window time.Duration, now time.Time) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.buckets) >= t.sweepAt {
		t.sweep(now)
	}

	stamps := t.prune(key, window, now)
	if len(stamps) >= max {
		return len(stamps), false
	}
	b := t.buckets[key]
	if b == nil {
		b = &bucket{}
		t.buckets[key] = b
	}
	b.window = window
	b.stamps = append(stamps, now)
	return len(stamps), true
}

// Len returns the number of keys currently tracked.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buckets)
}

// prune must be called with mu held.
func (t *Tracker) prune(key string, window time.Duration, now time.Time) []time.Time {
	b := t.buckets[key]
	if b == nil {
		return nil
	}
	cutoff := now.Add(-window)
	i := 0
	for i < len(b.stamps) && b.stamps[i].Before(cutoff) {
		i++
	}
	b.stamps = b.stamps[i:]
	if len(b.stamps) == 0 {
		delete(t.buckets, key)
		return nil
	}
	return b.stamps
}

// sweep prunes every bucket against the window it was last recorded with.
// It must be called with mu held.
func (t *Tracker) sweep(now time.Time) {
	for key, b := range t.buckets {
		t.prune(key, b.window, now)
	}
	t.sweepAt = max(sweepFloor, 2*len(t.buckets))
}
