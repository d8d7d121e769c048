package logging

import (
	"sync"
	"time"
)

// Throttle is a per-key token bucket for log lines that would otherwise repeat
// every tick, such as a resting pair of colliding bodies.
type Throttle struct {
	maxEvents   int
	window      time.Duration
	keys        map[string]*bucket
	lastCleanup time.Time
	now         func() time.Time
	mu          sync.Mutex
}

type bucket struct {
	tokens     int
	lastRefill time.Time
	lastSeen   time.Time
}

// NewThrottle allows maxEvents per key in each window
func NewThrottle(maxEvents int, window time.Duration) *Throttle {
	return &Throttle{
		maxEvents:   maxEvents,
		window:      window,
		keys:        make(map[string]*bucket),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Allow reports whether another line for key may be written now
func (t *Throttle) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if now.Sub(t.lastCleanup) > 2*t.window {
		t.removeIdle(now)
	}

	b, ok := t.keys[key]
	if !ok {
		b = &bucket{tokens: t.maxEvents, lastRefill: now}
		t.keys[key] = b
	}
	b.lastSeen = now

	elapsed := now.Sub(b.lastRefill)
	if elapsed > 0 && b.tokens < t.maxEvents {
		windowsPassed := float64(elapsed) / float64(t.window)
		if add := int(float64(t.maxEvents) * windowsPassed); add > 0 {
			b.tokens += add
			if b.tokens > t.maxEvents {
				b.tokens = t.maxEvents
			}
			b.lastRefill = now
		}
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

// Len returns the number of keys currently tracked
func (t *Throttle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.keys)
}

// removeIdle drops keys not seen for two windows. Caller holds mu.
func (t *Throttle) removeIdle(now time.Time) {
	cutoff := now.Add(-2 * t.window)
	for key, b := range t.keys {
		if b.lastSeen.Before(cutoff) {
			delete(t.keys, key)
		}
	}
	t.lastCleanup = now
}
