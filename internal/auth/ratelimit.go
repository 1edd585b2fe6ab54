// internal/auth/ratelimit.go
package auth

import (
	"sync"
	"time"
)

const (
	attemptWindow = 15 * time.Minute
	maxAttempts   = 8
)

type attemptRecord struct {
	count int
	last  time.Time
}

// RateLimiter bounds login attempts per client key within a sliding window.
// State lives in process memory only; a restart clears all counters, which is
// accepted for a single-instance deployment.
type RateLimiter struct {
	mu       sync.Mutex
	attempts map[string]attemptRecord
	window   time.Duration
	max      int
	now      func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		attempts: make(map[string]attemptRecord),
		window:   attemptWindow,
		max:      maxAttempts,
		now:      time.Now,
	}
}

// CanAttempt reports whether key may try to log in. A record older than the
// window is discarded on the way through.
func (l *RateLimiter) CanAttempt(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.attempts[key]
	if !ok {
		return true
	}
	if l.now().Sub(entry.last) > l.window {
		delete(l.attempts, key)
		return true
	}
	return entry.count < l.max
}

// RecordAttempt updates the counter for key. A success clears the record
// entirely; a failure outside the window starts a fresh count at 1.
func (l *RateLimiter) RecordAttempt(key string, success bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if success {
		delete(l.attempts, key)
		return
	}
	now := l.now()
	if entry, ok := l.attempts[key]; ok && now.Sub(entry.last) <= l.window {
		l.attempts[key] = attemptRecord{count: entry.count + 1, last: now}
		return
	}
	l.attempts[key] = attemptRecord{count: 1, last: now}
}
