package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshdurbin/shortlinks/internal/clock"
	"github.com/joshdurbin/shortlinks/internal/domain"
)

func newTestCache(t *testing.T) (*Cache, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	c := New(clk)
	t.Cleanup(func() { _ = c.Close() })
	return c, clk
}

func entry(linkID string) *domain.CacheEntry {
	return &domain.CacheEntry{
		LinkID:      linkID,
		OriginalURL: "https://example.com/page",
		IsActive:    true,
	}
}

func TestCacheSetAndGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "abc123", entry("link-1"), time.Hour))

	got, hit := c.Get(ctx, "abc123")
	require.True(t, hit)
	assert.Equal(t, "link-1", got.LinkID)
	assert.Equal(t, "https://example.com/page", got.OriginalURL)
}

func TestCacheMiss(t *testing.T) {
	c, _ := newTestCache(t)

	got, hit := c.Get(context.Background(), "missing")
	assert.False(t, hit)
	assert.Nil(t, got)
}

func TestCacheTTLExpiry(t *testing.T) {
	c, clk := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "abc123", entry("link-1"), time.Minute))

	_, hit := c.Get(ctx, "abc123")
	assert.True(t, hit)

	clk.Advance(59 * time.Second)
	_, hit = c.Get(ctx, "abc123")
	assert.True(t, hit)

	// At exactly TTL the entry is gone.
	clk.Advance(time.Second)
	_, hit = c.Get(ctx, "abc123")
	assert.False(t, hit)
}

func TestCacheRemove(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "abc123", entry("link-1"), time.Hour))
	require.NoError(t, c.Remove(ctx, "abc123"))

	_, hit := c.Get(ctx, "abc123")
	assert.False(t, hit)

	// Removing an absent key is not an error.
	assert.NoError(t, c.Remove(ctx, "abc123"))
}

func TestCacheSetOverwrites(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "abc123", entry("link-1"), time.Hour))
	require.NoError(t, c.Set(ctx, "abc123", entry("link-2"), time.Hour))

	got, hit := c.Get(ctx, "abc123")
	require.True(t, hit)
	assert.Equal(t, "link-2", got.LinkID)
}

func TestCacheReturnsCopies(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	original := entry("link-1")
	require.NoError(t, c.Set(ctx, "abc123", original, time.Hour))

	// Mutating what the caller holds must not leak into the cache.
	original.IsActive = false
	first, hit := c.Get(ctx, "abc123")
	require.True(t, hit)
	assert.True(t, first.IsActive)

	first.IsActive = false
	second, hit := c.Get(ctx, "abc123")
	require.True(t, hit)
	assert.True(t, second.IsActive)
}

func TestCacheSweepDropsExpired(t *testing.T) {
	c, clk := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", entry("link-1"), time.Minute))
	require.NoError(t, c.Set(ctx, "long", entry("link-2"), time.Hour))

	clk.Advance(2 * time.Minute)
	c.sweep()

	c.mutex.RLock()
	_, shortExists := c.data["short"]
	_, longExists := c.data["long"]
	c.mutex.RUnlock()

	assert.False(t, shortExists)
	assert.True(t, longExists)
}

func TestCacheCloseIdempotent(t *testing.T) {
	clk := clock.NewFake(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	c := New(clk)

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}
