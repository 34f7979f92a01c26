// Package project implements the Project Registry: ProjectKey allocation,
// the key-to-project map, and the path-ownership predicates close_project
// depends on. Grounded on the Projects/ProjectKey collaborator referenced
// throughout original_source's biome_service/src/workspace/server.rs, with
// key allocation using the same atomic-counter pattern as
// make_search_pattern_id.
package project

import (
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/standardbeagle/wspace/internal/wsconfig"
	"github.com/standardbeagle/wspace/internal/wtypes"
)

// Project is everything the workspace server tracks for one opened root:
// its filesystem path, resolved settings, manifest (if any), and gitignore
// matcher.
type Project struct {
	Key       wtypes.ProjectKey
	Path      string
	Settings  wsconfig.Settings
	Manifest  *wsconfig.Manifest
	Gitignore *wsconfig.GitMatcher
}

// Registry maps ProjectKey to *Project. Lookups are lock-free reads of a
// sync.Map; registration/removal is infrequent relative to lookups, so
// using sync.Map here (rather than the Document Store's reconciling Swap)
// is simpler and sufficient since projects are never raced the way
// documents are.
type Registry struct {
	nextKey atomic.Uint64
	byKey   sync.Map // wtypes.ProjectKey -> *Project
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Insert allocates a fresh ProjectKey for path and registers it.
func (r *Registry) Insert(path string, settings wsconfig.Settings) *Project {
	key := wtypes.ProjectKey(r.nextKey.Add(1))
	p := &Project{Key: key, Path: path, Settings: settings}
	r.byKey.Store(key, p)
	return p
}

// Get resolves a ProjectKey to its Project.
func (r *Registry) Get(key wtypes.ProjectKey) (*Project, bool) {
	v, ok := r.byKey.Load(key)
	if !ok {
		return nil, false
	}
	return v.(*Project), true
}

// Remove deregisters key.
func (r *Registry) Remove(key wtypes.ProjectKey) {
	r.byKey.Delete(key)
}

// Range calls f for every registered project.
func (r *Registry) Range(f func(*Project) bool) {
	r.byKey.Range(func(_, v any) bool { return f(v.(*Project)) })
}

// BelongsTo reports whether path is inside project p's root.
func BelongsTo(p *Project, path string) bool {
	rel, err := filepath.Rel(p.Path, path)
	if err != nil {
		return false
	}
	return rel == "." || !strings.HasPrefix(rel, "..")
}

// BelongsOnlyTo reports whether path belongs to p and to no other
// registered project — used by close_project to decide which
// scanner-opened documents to evict without disturbing a path shared by an
// overlapping project.
func BelongsOnlyTo(r *Registry, p *Project, path string) bool {
	if !BelongsTo(p, path) {
		return false
	}
	owned := true
	r.Range(func(other *Project) bool {
		if other.Key == p.Key {
			return true
		}
		if BelongsTo(other, path) {
			owned = false
			return false
		}
		return true
	})
	return owned
}
