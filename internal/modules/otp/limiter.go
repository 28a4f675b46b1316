package otp

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const evictThreshold = 1024

// limiter throttles code sends per subject within this process.
type limiter struct {
	mu       sync.Mutex
	interval time.Duration
	entries  map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiter(interval time.Duration) *limiter {
	return &limiter{interval: interval, entries: make(map[string]*limiterEntry)}
}

// Reserve takes subject's send slot. Calling release hands the slot back, for
// sends that never reached the vendor.
func (l *limiter) Reserve(subject string, now time.Time) (release func(), ok bool) {
	if l.interval <= 0 {
		return func() {}, true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) >= evictThreshold {
		l.evict(now)
	}
	e, ok := l.entries[subject]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Every(l.interval), 1)}
		l.entries[subject] = e
	}
	e.lastSeen = now
	if !e.limiter.AllowN(now, 1) {
		return nil, false
	}
	return func() { l.forget(subject, e) }, true
}

func (l *limiter) forget(subject string, e *limiterEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.entries[subject] == e {
		delete(l.entries, subject)
	}
}

// evict drops subjects idle for longer than the interval; their bucket is full again anyway.
func (l *limiter) evict(now time.Time) {
	for subject, e := range l.entries {
		if now.Sub(e.lastSeen) > l.interval {
			delete(l.entries, subject)
		}
	}
}
