// Package abuse tracks submission rates per client tag. The tag is an
// opaque device identifier used only for rate bucketing, never identity.
package abuse

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether a client tag may submit right now.
type Limiter interface {
	// Allow records an attempt for tag and reports whether it fits the
	// configured window. Thread-safe and atomic.
	Allow(ctx context.Context, tag string) bool

	// Size returns the number of tags currently tracked.
	Size() int
}

// bucket holds one tag's attempts inside the current window.
type bucket struct {
	windowStart time.Time
	count       int
}

// windowLimiter implements Limiter with fixed windows per tag. The tag map
// is bounded: when full, expired buckets are swept first, and new tags
// fail closed while every tracked bucket is still live.
type windowLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
	maxTags int
	now     func() time.Time
}

// Option applies a configuration option to the limiter.
type Option func(*windowLimiter)

// WithLimit sets the number of submissions allowed per window.
func WithLimit(n int) Option {
	return func(l *windowLimiter) {
		if n > 0 {
			l.limit = n
		}
	}
}

// WithWindow sets the window length.
func WithWindow(d time.Duration) Option {
	return func(l *windowLimiter) {
		if d > 0 {
			l.window = d
		}
	}
}

// WithMaxTags bounds the number of tags kept in memory.
func WithMaxTags(n int) Option {
	return func(l *windowLimiter) {
		if n > 0 {
			l.maxTags = n
		}
	}
}

// withTimeSource overrides the clock; tests only.
func withTimeSource(now func() time.Time) Option {
	return func(l *windowLimiter) { l.now = now }
}

// NewLimiter creates a fixed-window limiter with configuration options.
func NewLimiter(opts ...Option) Limiter {
	l := &windowLimiter{
		limit:   30,
		window:  time.Minute,
		maxTags: 100_000,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.buckets = make(map[string]*bucket)
	return l
}

// Allow records an attempt for tag and reports whether it is admitted.
func (l *windowLimiter) Allow(_ context.Context, tag string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[tag]
	if ok && now.Sub(b.windowStart) >= l.window {
		// Window rolled over; start fresh.
		b.windowStart = now
		b.count = 0
	}
	if !ok {
		if len(l.buckets) >= l.maxTags {
			l.sweepExpiredLocked(now)
		}
		if len(l.buckets) >= l.maxTags {
			// Table still full of live tags; fail closed for new ones.
			return false
		}
		b = &bucket{windowStart: now}
		l.buckets[tag] = b
	}
	if b.count >= l.limit {
		return false
	}
	b.count++
	return true
}

// Size returns the number of tracked tags.
func (l *windowLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// sweepExpiredLocked drops buckets whose window has fully elapsed.
func (l *windowLimiter) sweepExpiredLocked(now time.Time) {
	for tag, b := range l.buckets {
		if now.Sub(b.windowStart) >= l.window {
			delete(l.buckets, tag)
		}
	}
}
