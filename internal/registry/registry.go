// Package registry tracks the set of top-level directories currently known
// under the watch root.
//
// The set is the classifier's only persistent state. It is seeded once at
// startup from the watch root's immediate children and mutated only by the
// classifier afterwards. Membership decides how a raw remove notification is
// interpreted: removes for paths outside the set are ignored.
package registry

import (
	"path/filepath"
	"sort"
	"sync"
)

// Registry is the set of known top-level directory paths.
// Paths are compared by their cleaned string form.
type Registry struct {
	mu    sync.RWMutex
	paths map[string]struct{}
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		paths: make(map[string]struct{}),
	}
}

// Insert adds a path to the set. Inserting an existing path is a no-op.
func (r *Registry) Insert(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths[filepath.Clean(path)] = struct{}{}
}

// Remove removes a path from the set.
// Returns true if the path was present.
func (r *Registry) Remove(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := filepath.Clean(path)
	if _, ok := r.paths[key]; !ok {
		return false
	}
	delete(r.paths, key)
	return true
}

// Contains reports whether a path is in the set.
func (r *Registry) Contains(path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.paths[filepath.Clean(path)]
	return ok
}

// Len returns the number of tracked paths.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.paths)
}

// Paths returns a sorted snapshot of the tracked paths.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.paths))
	for p := range r.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
