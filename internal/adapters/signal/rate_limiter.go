package signal

import (
	"sync"
	"time"

	"github.com/apurv-sgh/test-edtech/internal/core"
)

// RateLimiter caps chat sends per transport over a sliding window.
type RateLimiter struct {
	mu       sync.Mutex
	history  map[core.TransportID][]time.Time
	limit    int
	interval time.Duration
}

func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		history:  make(map[core.TransportID][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func (rl *RateLimiter) Allow(tid core.TransportID) bool {
	if rl.limit <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[tid]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[tid] = fresh
		return false
	}

	fresh = append(fresh, now)
	rl.history[tid] = fresh
	return true
}

// Forget drops the history for a disconnected transport.
func (rl *RateLimiter) Forget(tid core.TransportID) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.history, tid)
}
