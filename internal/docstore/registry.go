package docstore

import (
	"sync"

	"github.com/standardbeagle/wspace/internal/wtypes"
)

// SourceRegistry interns DocumentFileSource values behind stable indices.
// Once assigned, an index is never reused or reassigned to a different
// value, so callers can cache a SourceIndex across the lifetime of the
// process instead of re-resolving a DocumentFileSource on every access.
//
// Modeled on the append-only content tables in
// standardbeagle-lci/internal/core/file_content_store.go: readers share a
// read lock and wait only while the one mutation (append), a short,
// single-writer critical section, holds the write lock.
type SourceRegistry struct {
	mu      sync.RWMutex
	sources []wtypes.DocumentFileSource
}

// NewSourceRegistry returns an empty registry.
func NewSourceRegistry() *SourceRegistry {
	return &SourceRegistry{}
}

// Insert returns the stable index for source, interning it if this exact
// value has not been seen before.
func (r *SourceRegistry) Insert(source wtypes.DocumentFileSource) wtypes.SourceIndex {
	r.mu.RLock()
	for i, s := range r.sources {
		if s == source {
			r.mu.RUnlock()
			return wtypes.SourceIndex(i)
		}
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	// Re-check under the write lock: another writer may have interned the
	// same value while we were waiting.
	for i, s := range r.sources {
		if s == source {
			return wtypes.SourceIndex(i)
		}
	}
	r.sources = append(r.sources, source)
	return wtypes.SourceIndex(len(r.sources) - 1)
}

// Get resolves an index back to its DocumentFileSource. ok is false if the
// index is out of range.
func (r *SourceRegistry) Get(index wtypes.SourceIndex) (wtypes.DocumentFileSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if index < 0 || int(index) >= len(r.sources) {
		return wtypes.UnknownSource, false
	}
	return r.sources[index], true
}

// Len reports how many distinct sources have been interned.
func (r *SourceRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources)
}
