package interfaces

import "time"

// IRateLimiter caps creation attempts per key. It is advisory and local to
// this process.
type IRateLimiter interface {
	TryAcquire(key string) bool
	RetryAfter(key string) time.Duration
}
