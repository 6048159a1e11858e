package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/joshdurbin/shortlinks/internal/clock"
)

func TestLimiterAllowsUpToLimit(t *testing.T) {
	clk := clock.NewFake(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	limiter := New(clk, 3)

	for i := 0; i < 3; i++ {
		result := limiter.Allow("10.0.0.1")
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 3-i-1, result.Remaining)
	}

	result := limiter.Allow("10.0.0.1")
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
}

func TestLimiterRetryAfter(t *testing.T) {
	tests := []struct {
		name       string
		second     int
		nanosecond int
		want       int
	}{
		{name: "start of minute", second: 0, want: 60},
		{name: "mid minute", second: 15, want: 45},
		{name: "last second", second: 59, want: 1},
		{name: "fractional second rounds up", second: 59, nanosecond: 500_000_000, want: 1},
		{name: "just past boundary", second: 0, nanosecond: 1, want: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk := clock.NewFake(time.Date(2025, 6, 15, 12, 30, tt.second, tt.nanosecond, time.UTC))
			limiter := New(clk, 1)

			limiter.Allow("10.0.0.1")
			result := limiter.Allow("10.0.0.1")

			assert.False(t, result.Allowed)
			assert.Equal(t, tt.want, result.RetryAfterSeconds)
			assert.GreaterOrEqual(t, result.RetryAfterSeconds, 1)
			assert.LessOrEqual(t, result.RetryAfterSeconds, 60)
		})
	}
}

func TestLimiterWindowReset(t *testing.T) {
	clk := clock.NewFake(time.Date(2025, 6, 15, 12, 0, 30, 0, time.UTC))
	limiter := New(clk, 2)

	limiter.Allow("10.0.0.1")
	limiter.Allow("10.0.0.1")
	assert.False(t, limiter.Allow("10.0.0.1").Allowed)

	// Crossing the minute boundary opens a fresh window.
	clk.Advance(30 * time.Second)
	result := limiter.Allow("10.0.0.1")
	assert.True(t, result.Allowed)
	assert.Equal(t, 1, result.Remaining)
}

func TestLimiterIsolatesClients(t *testing.T) {
	clk := clock.NewFake(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	limiter := New(clk, 1)

	assert.True(t, limiter.Allow("10.0.0.1").Allowed)
	assert.False(t, limiter.Allow("10.0.0.1").Allowed)

	// A different client has its own counter.
	assert.True(t, limiter.Allow("10.0.0.2").Allowed)
}

func TestLimiterDefaultsNonPositiveLimit(t *testing.T) {
	clk := clock.NewFake(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))

	for _, limit := range []int{0, -5} {
		limiter := New(clk, limit)
		assert.Equal(t, DefaultCreateLimit, limiter.Limit())
	}
}

func TestLimiterConcurrentClients(t *testing.T) {
	clk := clock.NewFake(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	limiter := New(clk, 5)

	done := make(chan int, 10)
	for i := 0; i < 10; i++ {
		go func(n int) {
			allowed := 0
			ip := fmt.Sprintf("10.0.0.%d", n)
			for j := 0; j < 8; j++ {
				if limiter.Allow(ip).Allowed {
					allowed++
				}
			}
			done <- allowed
		}(i)
	}

	for i := 0; i < 10; i++ {
		assert.Equal(t, 5, <-done)
	}
}
