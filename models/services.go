// forum/models/services.go
package models

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// --- Stateful Services ---

// AttemptLimiter throttles authentication attempts per identifier (usually
// the caller's IP) over a sliding window. Every call to Allow records an
// attempt, whether or not it is allowed, so hammering a locked-out
// identifier keeps it locked out.
type AttemptLimiter struct {
	mu       sync.Mutex
	window   time.Duration
	max      int
	attempts map[string][]time.Time
	now      func() time.Time
}

// NewAttemptLimiter creates a limiter allowing fewer than max attempts per
// identifier within the trailing window.
func NewAttemptLimiter(window time.Duration, max int) *AttemptLimiter {
	return &AttemptLimiter{
		window:   window,
		max:      max,
		attempts: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// SetClock replaces the limiter's time source. Test use only.
func (al *AttemptLimiter) SetClock(now func() time.Time) {
	al.mu.Lock()
	al.now = now
	al.mu.Unlock()
}

// Allow records an attempt for identifier and reports whether it is within
// the limit. Entries older than the window are pruned for every identifier
// on each call, so the maps never grow past the set of recently active
// callers.
func (al *AttemptLimiter) Allow(identifier string) bool {
	al.mu.Lock()
	defer al.mu.Unlock()

	now := al.now()
	cutoff := now.Add(-al.window)
	for key, stamps := range al.attempts {
		kept := stamps[:0]
		for _, ts := range stamps {
			if ts.After(cutoff) {
				kept = append(kept, ts)
			}
		}
		if len(kept) == 0 {
			delete(al.attempts, key)
			continue
		}
		al.attempts[key] = kept
	}

	al.attempts[identifier] = append(al.attempts[identifier], now)
	return len(al.attempts[identifier]) < al.max
}

// WriteLimiter rate limits mutating requests per IP using token buckets.
// This guards the presentation layer against floods; it is separate from
// AttemptLimiter, which implements the exact login-throttling contract.
type WriteLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	every    time.Duration
	burst    int
	stop     chan struct{}
}

// NewWriteLimiter creates a write limiter refilling one token per every,
// with the given burst. Stale per-IP buckets are pruned every prune
// interval once idle longer than expire, until Close is called.
func NewWriteLimiter(every time.Duration, burst int, prune, expire time.Duration) *WriteLimiter {
	wl := &WriteLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		every:    every,
		burst:    burst,
		stop:     make(chan struct{}),
	}
	go wl.cleanup(prune, expire)
	return wl
}

// Close stops the background pruning goroutine. Call at most once.
func (wl *WriteLimiter) Close() {
	close(wl.stop)
}

// Allow reports whether the given IP may perform a write right now.
func (wl *WriteLimiter) Allow(ip string) bool {
	wl.mu.Lock()
	limiter, ok := wl.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(wl.every), wl.burst)
		wl.limiters[ip] = limiter
	}
	wl.lastSeen[ip] = time.Now()
	wl.mu.Unlock()
	return limiter.Allow()
}

func (wl *WriteLimiter) cleanup(prune, expire time.Duration) {
	ticker := time.NewTicker(prune)
	defer ticker.Stop()
	for {
		select {
		case <-wl.stop:
			return
		case <-ticker.C:
		}
		wl.mu.Lock()
		cutoff := time.Now().Add(-expire)
		for ip, seen := range wl.lastSeen {
			if seen.Before(cutoff) {
				delete(wl.limiters, ip)
				delete(wl.lastSeen, ip)
			}
		}
		wl.mu.Unlock()
	}
}

// AvatarStore is the persistence boundary for avatar images. The engine
// decides content-addressed filenames; the store decides where the bytes
// live and reports the public path recorded in the Image row.
type AvatarStore interface {
	Save(filename string, data []byte, contentType string) (string, error)
	Delete(path string) error
}
