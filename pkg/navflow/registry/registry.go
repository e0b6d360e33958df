// Package registry shares node instances across graphs and names the nodes
// and edges that flow files refer to.
//
// Three lookups are provided:
//
//   - Registry, a generic concurrent map used by the others;
//   - Nodes, keyed by Go type, for singleton nodes shared between graphs
//     (a common exit screen registered in several subgraphs);
//   - Catalog, keyed by name, resolving the "ref" and "edge" fields of a
//     flow file to real nodes and edge constructors.
//
// None of them is used during traversal.
package registry

import (
	"sort"
	"sync"
)

// Registry is a thread-safe map for read-heavy workloads.
type Registry[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
}

// New creates an empty registry.
func New[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{entries: make(map[K]V)}
}

// Register adds or replaces a value.
func (r *Registry[K, V]) Register(key K, value V) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = value
}

// Get returns the value for key.
func (r *Registry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[key]
	return v, ok
}

// Has reports whether key is registered.
func (r *Registry[K, V]) Has(key K) bool {
	_, ok := r.Get(key)
	return ok
}

// Len returns the number of entries.
func (r *Registry[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Keys returns every key in no particular order.
func (r *Registry[K, V]) Keys() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]K, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	return keys
}

// GetOrCreate returns the value for key, creating it with factory if it
// doesn't exist. factory is called at most once per key, even under
// concurrent access.
func (r *Registry[K, V]) GetOrCreate(key K, factory func() V) V {
	r.mu.RLock()
	v, ok := r.entries[key]
	r.mu.RUnlock()
	if ok {
		return v
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.entries[key]; ok {
		return v
	}
	v = factory()
	r.entries[key] = v
	return v
}

func sortedKeys[V any](r *Registry[string, V]) []string {
	keys := r.Keys()
	sort.Strings(keys)
	return keys
}
