package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joshdurbin/shortlinks/internal/cache"
	"github.com/joshdurbin/shortlinks/internal/domain"
	"github.com/joshdurbin/shortlinks/internal/metrics"
)

// keyPrefix namespaces short code keys in a shared Redis.
const keyPrefix = "su:"

// Cache implements cache.Cache backed by Redis. Transport failures surface as
// misses on Get; the service treats the backing store as the only authority.
type Cache struct {
	client *redis.Client
}

// New creates a Redis-backed cache.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Get retrieves a cache entry by short code. Any Redis failure is reported as
// a miss so the caller degrades to the store.
func (c *Cache) Get(ctx context.Context, shortCode string) (*domain.CacheEntry, bool) {
	payload, err := c.client.Get(ctx, keyPrefix+shortCode).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheOperations.WithLabelValues("redis", "miss").Inc()
		} else {
			metrics.CacheOperations.WithLabelValues("redis", "error").Inc()
		}
		return nil, false
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		metrics.CacheOperations.WithLabelValues("redis", "error").Inc()
		return nil, false
	}

	metrics.CacheOperations.WithLabelValues("redis", "hit").Inc()
	return &entry, true
}

// Set stores a cache entry with an absolute-from-write TTL.
func (c *Cache) Set(ctx context.Context, shortCode string, entry *domain.CacheEntry, ttl time.Duration) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	metrics.CacheOperations.WithLabelValues("redis", "set").Inc()
	return c.client.Set(ctx, keyPrefix+shortCode, payload, ttl).Err()
}

// Remove invalidates a cache entry.
func (c *Cache) Remove(ctx context.Context, shortCode string) error {
	metrics.CacheOperations.WithLabelValues("redis", "remove").Inc()
	return c.client.Del(ctx, keyPrefix+shortCode).Err()
}

// Close closes the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ensure Cache implements the interface
var _ cache.Cache = (*Cache)(nil)
