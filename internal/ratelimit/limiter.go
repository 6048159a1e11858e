package ratelimit

import (
	"math"
	"sync"
	"time"

	"github.com/joshdurbin/shortlinks/internal/clock"
)

// DefaultCreateLimit is the default number of create requests allowed per
// client IP in one calendar-minute window.
const DefaultCreateLimit = 20

// Result reports the outcome of one rate limit check.
type Result struct {
	Allowed           bool
	Remaining         int
	RetryAfterSeconds int
}

// Limiter is a fixed-window counter keyed by (clientIP, calendar minute).
// Windows align to wall-clock minute boundaries, which admits up to a 2x
// burst across a boundary in exchange for O(1) bookkeeping.
type Limiter struct {
	clk   clock.Clock
	limit int

	mu     sync.Mutex
	window string
	counts map[string]int
}

// New creates a limiter allowing limit requests per IP per minute. A
// non-positive limit falls back to DefaultCreateLimit.
func New(clk clock.Clock, limit int) *Limiter {
	if limit <= 0 {
		limit = DefaultCreateLimit
	}
	return &Limiter{
		clk:    clk,
		limit:  limit,
		counts: make(map[string]int),
	}
}

// Allow records one request for the client IP and reports whether it is
// permitted within the current window.
func (l *Limiter) Allow(clientIP string) Result {
	now := l.clk.Now().UTC()
	window := now.Format("200601021504")

	nextWindow := now.Truncate(time.Minute).Add(time.Minute)
	retryAfter := int(math.Ceil(nextWindow.Sub(now).Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Counts from a previous window can never be consulted again, so the
	// whole map is dropped when the window rolls over.
	if l.window != window {
		l.window = window
		l.counts = make(map[string]int)
	}

	count := l.counts[clientIP]
	if count >= l.limit {
		return Result{
			Allowed:           false,
			Remaining:         0,
			RetryAfterSeconds: retryAfter,
		}
	}

	l.counts[clientIP] = count + 1
	return Result{
		Allowed:           true,
		Remaining:         l.limit - count - 1,
		RetryAfterSeconds: retryAfter,
	}
}

// Limit returns the configured per-minute limit.
func (l *Limiter) Limit() int {
	return l.limit
}
