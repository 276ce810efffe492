package llm

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/spice-insights/internal/service"
)

// Cache stores classifier answers by merchant key.
type Cache interface {
	Get(ctx context.Context, key string) (service.Classification, bool)
	Set(ctx context.Context, key string, value service.Classification)
	Close() error
}

// cacheEntry represents a cached classification.
type cacheEntry struct {
	expiry time.Time
	value  service.Classification
}

// memoryCache provides thread-safe in-process caching.
type memoryCache struct {
	entries map[string]cacheEntry
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
}

// newMemoryCache creates a cache with the specified TTL.
func newMemoryCache(ttl time.Duration) *memoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	cache := &memoryCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

// Get returns a cached value if it exists and hasn't expired.
func (c *memoryCache) Get(_ context.Context, key string) (service.Classification, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || time.Now().After(entry.expiry) {
		return service.Classification{}, false
	}

	return entry.value, true
}

// Set stores a value.
func (c *memoryCache) Set(_ context.Context, key string, value service.Classification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		value:  value,
		expiry: time.Now().Add(c.ttl),
	}
}

// cleanup periodically removes expired entries.
func (c *memoryCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiry) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

func (c *memoryCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine.
func (c *memoryCache) Close() error {
	close(c.stopCh)
	return nil
}
