package docstore

import "sync"

// NodeCache is an opaque, capability-owned incremental-reparse accelerator.
// The workspace server never looks inside it; it only takes, hands to a
// capability's parse function, and puts it back.
type NodeCache any

// AccelerationCache holds one NodeCache per path behind a single mutex.
// Unlike the Document Store, this is deliberately NOT lock-free: entries
// are cheap to create, the critical sections are O(1) map operations, and
// a coarse mutex is simpler to reason about for something this small.
// Grounded on the Mutex<FxHashMap<...>> node_cache field in the original
// implementation (see original_source).
type AccelerationCache struct {
	mu      sync.Mutex
	entries map[string]NodeCache
}

// NewAccelerationCache returns an empty cache.
func NewAccelerationCache() *AccelerationCache {
	return &AccelerationCache{entries: make(map[string]NodeCache)}
}

// Take removes and returns the cache entry for path, if any, so a parse
// call can consume it without holding the cache lock for the duration of
// the parse.
func (c *AccelerationCache) Take(path string) (NodeCache, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[path]
	if ok {
		delete(c.entries, path)
	}
	return v, ok
}

// Put stores cache for path, overwriting any existing entry.
func (c *AccelerationCache) Put(path string, cache NodeCache) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = cache
}

// Delete removes the cache entry for path, if any. Safe to call whether or
// not an entry exists.
func (c *AccelerationCache) Delete(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Len reports how many entries are cached, for diagnostics.
func (c *AccelerationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
