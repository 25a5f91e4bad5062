package ratelimit

import (
	"context"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"pix_checkout/internal/usecase/interfaces"
)

const (
	DefaultMaxAttempts = 10
	DefaultWindow      = 5 * time.Minute
)

// SlidingWindowLimiter allows at most limit acquisitions per key within any
// window-long interval. State is in memory and per process.
type SlidingWindowLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

var _ interfaces.IRateLimiter = (*SlidingWindowLimiter)(nil)

func NewSlidingWindowLimiter(limit int, window time.Duration) *SlidingWindowLimiter {
	if limit <= 0 {
		limit = DefaultMaxAttempts
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &SlidingWindowLimiter{
		attempts: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// NewSlidingWindowLimiterFromEnv reads PIX_RATE_LIMIT_MAX and
// PIX_RATE_LIMIT_WINDOW (Go duration), falling back to 10 / 5m.
func NewSlidingWindowLimiterFromEnv() *SlidingWindowLimiter {
	limit := DefaultMaxAttempts
	if v, err := strconv.Atoi(os.Getenv("PIX_RATE_LIMIT_MAX")); err == nil && v > 0 {
		limit = v
	}
	window := DefaultWindow
	if v, err := time.ParseDuration(os.Getenv("PIX_RATE_LIMIT_WINDOW")); err == nil && v > 0 {
		window = v
	}
	log.Printf("[pix][ratelimit] configured limit=%d window=%s", limit, window)
	return NewSlidingWindowLimiter(limit, window)
}

// TryAcquire records an attempt for key and reports whether it is allowed.
// Denied attempts are not recorded.
func (l *SlidingWindowLimiter) TryAcquire(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.prune(key, now)
	if len(recent) >= l.limit {
		return false
	}
	l.attempts[key] = append(recent, now)
	return true
}

// Remaining is how many acquisitions key still has in the current window.
func (l *SlidingWindowLimiter) Remaining(key string) int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.limit - len(l.prune(key, now))
}

// RetryAfter is how long until key can acquire again; zero if it can now.
func (l *SlidingWindowLimiter) RetryAfter(key string) time.Duration {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.prune(key, now)
	if len(recent) < l.limit {
		return 0
	}
	// oldest attempt leaving the window frees one slot
	return recent[0].Add(l.window).Sub(now)
}

// prune drops attempts that left the window. Caller holds l.mu.
func (l *SlidingWindowLimiter) prune(key string, now time.Time) []time.Time {
	times := l.attempts[key]
	kept := times[:0]
	for _, t := range times {
		if now.Sub(t) < l.window {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(l.attempts, key)
		return nil
	}
	l.attempts[key] = kept
	return kept
}

// StartCleanup periodically forgets idle keys until ctx is done.
func (l *SlidingWindowLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := l.now()
				l.mu.Lock()
				for key := range l.attempts {
					l.prune(key, now)
				}
				l.mu.Unlock()
			}
		}
	}()
}
