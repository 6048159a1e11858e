package memory

import (
	"context"
	"sync"
	"time"

	"github.com/joshdurbin/shortlinks/internal/cache"
	"github.com/joshdurbin/shortlinks/internal/clock"
	"github.com/joshdurbin/shortlinks/internal/domain"
	"github.com/joshdurbin/shortlinks/internal/metrics"
)

// janitorInterval is how often expired entries are swept out. Expiry is also
// enforced lazily on Get, so the sweep only bounds memory growth.
const janitorInterval = time.Minute

type item struct {
	entry     *domain.CacheEntry
	expiresAt time.Time
}

// Cache implements cache.Cache with an in-process TTL map.
type Cache struct {
	clk      clock.Clock
	mutex    sync.RWMutex
	data     map[string]item
	stopChan chan struct{}
	stopOnce sync.Once
}

// New creates a new in-memory cache and starts its janitor.
func New(clk clock.Clock) *Cache {
	c := &Cache{
		clk:      clk,
		data:     make(map[string]item),
		stopChan: make(chan struct{}),
	}
	go c.janitor()
	return c
}

// Get retrieves a cache entry by short code. Entries past their TTL are
// treated as absent.
func (c *Cache) Get(ctx context.Context, shortCode string) (*domain.CacheEntry, bool) {
	c.mutex.RLock()
	it, exists := c.data[shortCode]
	c.mutex.RUnlock()

	if !exists || !it.expiresAt.After(c.clk.Now()) {
		metrics.CacheOperations.WithLabelValues("memory", "miss").Inc()
		return nil, false
	}

	metrics.CacheOperations.WithLabelValues("memory", "hit").Inc()
	// Return a copy to prevent external modification
	entry := *it.entry
	return &entry, true
}

// Set stores a cache entry with an absolute-from-write TTL.
func (c *Cache) Set(ctx context.Context, shortCode string, entry *domain.CacheEntry, ttl time.Duration) error {
	stored := *entry

	c.mutex.Lock()
	c.data[shortCode] = item{
		entry:     &stored,
		expiresAt: c.clk.Now().Add(ttl),
	}
	c.mutex.Unlock()

	metrics.CacheOperations.WithLabelValues("memory", "set").Inc()
	return nil
}

// Remove invalidates a cache entry.
func (c *Cache) Remove(ctx context.Context, shortCode string) error {
	c.mutex.Lock()
	delete(c.data, shortCode)
	c.mutex.Unlock()

	metrics.CacheOperations.WithLabelValues("memory", "remove").Inc()
	return nil
}

// Close stops the janitor.
func (c *Cache) Close() error {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
	return nil
}

// janitor periodically sweeps expired entries.
func (c *Cache) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Cache) sweep() {
	now := c.clk.Now()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	for code, it := range c.data {
		if !it.expiresAt.After(now) {
			delete(c.data, code)
		}
	}
}

// Ensure Cache implements the interface
var _ cache.Cache = (*Cache)(nil)
