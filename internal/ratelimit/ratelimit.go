// Package ratelimit throttles per-actor actions. RedisLimiter shares counters
// across API instances; MemoryLimiter keeps sliding windows in process.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Rule defines a rate limiting policy: the key prefix, maximum number of
// requests allowed in the window, and the window duration.
type Rule struct {
	Key    string        // key prefix (e.g., "rl:swipe:")
	Limit  int           // max count in the window
	Window time.Duration // time window
}

// SwipeRule builds the per-actor rule for record-swipe
func SwipeRule(perMinute int) Rule {
	return Rule{Key: "rl:swipe:", Limit: perMinute, Window: time.Minute}
}

// Limiter decides whether identifier may perform one more action
type Limiter interface {
	Allow(ctx context.Context, identifier string) (bool, error)
}

// RemainingReporter reports the budget left in the current window; -1 means unlimited
type RemainingReporter interface {
	Remaining(ctx context.Context, identifier string) (int, error)
}

// MemoryLimiter tracks requests per identifier in sliding windows
type MemoryLimiter struct {
	rule    Rule
	enabled bool

	// Request tracking
	windows map[string][]time.Time
	mu      sync.Mutex
	now     func() time.Time
}

// NewMemoryLimiter creates an in-process limiter for rule
func NewMemoryLimiter(rule Rule, enabled bool) *MemoryLimiter {
	return &MemoryLimiter{
		rule:    rule,
		enabled: enabled,
		windows: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Allow checks if a request is allowed and records it when it is
func (rl *MemoryLimiter) Allow(_ context.Context, identifier string) (bool, error) {
	if !rl.enabled || rl.rule.Limit <= 0 {
		return true, nil
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	window := filterTimes(rl.windows[identifier], now.Add(-rl.rule.Window))

	if len(window) >= rl.rule.Limit {
		rl.windows[identifier] = window
		return false, nil
	}

	rl.windows[identifier] = append(window, now)
	return true, nil
}

// Remaining returns how many requests identifier has left in the window,
// or -1 when the limiter does not limit
func (rl *MemoryLimiter) Remaining(_ context.Context, identifier string) (int, error) {
	if !rl.enabled || rl.rule.Limit <= 0 {
		return -1, nil
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	used := len(filterTimes(rl.windows[identifier], rl.now().Add(-rl.rule.Window)))
	if used >= rl.rule.Limit {
		return 0, nil
	}
	return rl.rule.Limit - used, nil
}

// Cleanup drops identifiers with no requests inside the window
func (rl *MemoryLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.rule.Window)
	for id, times := range rl.windows {
		kept := filterTimes(times, cutoff)
		if len(kept) == 0 {
			delete(rl.windows, id)
			continue
		}
		rl.windows[id] = kept
	}
}

// RunJanitor calls Cleanup every interval until stop is closed
func (rl *MemoryLimiter) RunJanitor(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			rl.Cleanup()
		}
	}
}

// filterTimes keeps only times after the cutoff
func filterTimes(times []time.Time, cutoff time.Time) []time.Time {
	result := make([]time.Time, 0, len(times))
	for _, t := range times {
		if t.After(cutoff) {
			result = append(result, t)
		}
	}
	return result
}

// GetStats returns current rate limiter statistics
func (rl *MemoryLimiter) GetStats() Stats {
	if !rl.enabled {
		return Stats{Enabled: false, Backend: "memory"}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.rule.Window)
	active := 0
	for _, times := range rl.windows {
		if len(filterTimes(times, cutoff)) > 0 {
			active++
		}
	}

	return Stats{
		Enabled:           true,
		Backend:           "memory",
		Limit:             rl.rule.Limit,
		WindowSeconds:     int(rl.rule.Window / time.Second),
		TrackedIdentities: active,
	}
}

// Stats contains rate limiter statistics
type Stats struct {
	Enabled           bool   `json:"enabled"`
	Backend           string `json:"backend"`
	Limit             int    `json:"limit"`
	WindowSeconds     int    `json:"window_seconds"`
	TrackedIdentities int    `json:"tracked_identities,omitempty"`
}

// Reset clears all tracked requests (useful for testing)
func (rl *MemoryLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.windows = make(map[string][]time.Time)
}
