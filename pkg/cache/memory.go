package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/clusterscope/evidence-core/pkg/logger"
)

// memoryCache is a process-local fallback used when the external cache is
// unavailable. Entries expire lazily on lookup; a background janitor bounds
// memory during long quiet periods. Deduplication state is not shared across
// replicas and is lost on restart.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	logger  logger.Logger
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

const janitorInterval = time.Minute

func NewMemoryCache(log logger.Logger) DedupCache {
	log.Warn("Valkey cache unavailable; using in-memory fallback (per-process dedup only)")
	c := &memoryCache{
		entries: make(map[string]memoryEntry),
		logger:  log,
		now:     time.Now,
	}
	go c.janitor()
	return c
}

// newMemoryCacheAt is the test constructor with an injectable clock.
func newMemoryCacheAt(log logger.Logger, now func() time.Time) *memoryCache {
	return &memoryCache{
		entries: make(map[string]memoryEntry),
		logger:  log,
		now:     now,
	}
}

func (c *memoryCache) CheckAndSet(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && now.Before(e.expiresAt) {
		return false, nil
	}
	c.entries[key] = memoryEntry{expiresAt: now.Add(ttl)}
	return true, nil
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !now.Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return e.value, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	c.entries[key] = memoryEntry{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// HealthCheck reports degraded operation so readiness probes can tell the
// fallback apart from a connected external cache.
func (c *memoryCache) HealthCheck(ctx context.Context) error {
	return fmt.Errorf("in-memory dedup cache in use (external cache not connected)")
}

func (c *memoryCache) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for range ticker.C {
		c.sweep()
	}
}

func (c *memoryCache) sweep() {
	now := c.now()
	c.mu.Lock()
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	c.mu.Unlock()
	if removed > 0 {
		c.logger.Debug("Swept expired dedup entries", "removed", removed)
	}
}
