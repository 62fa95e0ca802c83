// Package registry tracks the live objects of the loaded scenes and answers
// "find every object implementing X" lookups.
package registry

import "sync"

// Lister enumerates live objects in the order they were added.
type Lister interface {
	All() []any
}

type entry struct {
	scene string
	obj   any
}

// Registry is a concurrency-safe set of live objects grouped by scene.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
}

var _ Lister = (*Registry)(nil)

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// Add registers obj as belonging to scene.
func (r *Registry) Add(scene string, obj any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry{scene: scene, obj: obj})
}

// RemoveScene drops every object owned by scene and returns how many there were.
func (r *Registry) RemoveScene(scene string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.entries[:0]
	removed := 0
	for _, e := range r.entries {
		if e.scene == scene {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	clear(r.entries[len(kept):])
	r.entries = kept
	return removed
}

// Clear drops every object.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

// Len returns the number of live objects.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// All returns every live object.
func (r *Registry) All() []any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]any, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.obj
	}
	return out
}

// InScene returns the objects owned by scene.
func (r *Registry) InScene(scene string) []any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []any
	for _, e := range r.entries {
		if e.scene == scene {
			out = append(out, e.obj)
		}
	}
	return out
}

// FindAll returns every live object in l that implements T.
func FindAll[T any](l Lister) []T {
	var out []T
	for _, obj := range l.All() {
		if v, ok := obj.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
