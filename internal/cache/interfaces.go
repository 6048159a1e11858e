package cache

import (
	"context"
	"time"

	"github.com/joshdurbin/shortlinks/internal/domain"
)

// Cache is a read-through, write-invalidate accelerator for link metadata.
// It is never a source of truth: entries may be evicted at any time, and
// callers must treat eviction identically to a miss.
type Cache interface {
	// Get retrieves a cache entry by short code.
	Get(ctx context.Context, shortCode string) (*domain.CacheEntry, bool)

	// Set stores a cache entry with an absolute-from-write TTL.
	Set(ctx context.Context, shortCode string, entry *domain.CacheEntry, ttl time.Duration) error

	// Remove invalidates a cache entry.
	Remove(ctx context.Context, shortCode string) error

	// Close closes the cache connection (if applicable).
	Close() error
}
