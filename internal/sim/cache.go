package sim

// #region imports
import (
	"context"
	"fmt"
	"sync"
)

// #endregion

// #region cache

// Cache memoizes completed runs keyed by (scenario_id, run_seed). Under
// concurrent misses for one key, exactly one caller computes: the first
// claims the entry, the rest block on its ready channel. A failed compute
// releases the claim so a later caller can retry.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	ready  chan struct{}
	result *Result
	err    error
}

// NewCache returns an empty run cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*cacheEntry)}
}

// CacheKey derives the cache key for a scenario and seed.
func CacheKey(scenarioID string, runSeed uint64) string {
	return fmt.Sprintf("%s:%d", scenarioID, runSeed)
}

// GetOrCompute returns the cached result for key, computing it through fn
// on a miss. The second return reports whether the result came from cache.
func (c *Cache) GetOrCompute(ctx context.Context, key string, fn func() (*Result, error)) (*Result, bool, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		select {
		case <-e.ready:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
		if e.err != nil {
			return nil, false, e.err
		}
		return e.result, true, nil
	}

	e := &cacheEntry{ready: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()

	e.result, e.err = fn()
	if e.err != nil {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
	}
	close(e.ready)
	if e.err != nil {
		return nil, false, e.err
	}
	return e.result, false, nil
}

// Len reports the number of completed or in-flight entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// #endregion
