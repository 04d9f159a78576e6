// Package cache provides in-process lookup tables.
//
// Entries live for the lifetime of the table and are never invalidated or
// expired. Callers that need fresh data after the environment changes must
// create a new table. Nothing is persisted across process runs.
package cache

import "sync"

// Store is a keyed lookup table.
type Store[V any] interface {
	// Load returns the value stored under key and whether it was present.
	Load(key string) (V, bool)

	// Store records value under key, replacing any existing entry.
	Store(key string, value V)
}

// Table is a lazily populated, append-only lookup table safe for concurrent
// use. Concurrent misses on the same key may both compute a value; the last
// Store wins, which is harmless for idempotent computations.
type Table[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
}

// NewTable creates an empty table.
func NewTable[V any]() *Table[V] {
	return &Table[V]{entries: make(map[string]V)}
}

// Load returns the value stored under key.
func (t *Table[V]) Load(key string) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.entries[key]
	return v, ok
}

// Store records value under key.
func (t *Table[V]) Store(key string, value V) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.entries == nil {
		t.entries = make(map[string]V)
	}
	t.entries[key] = value
}

// GetOrCompute returns the cached value for key, calling compute and storing
// its result on a miss. Failed computations are not stored. The second return
// value reports whether the value came from the table.
func GetOrCompute[V any](s Store[V], key string, compute func() (V, error)) (V, bool, error) {
	if v, ok := s.Load(key); ok {
		return v, true, nil
	}
	v, err := compute()
	if err != nil {
		var zero V
		return zero, false, err
	}
	s.Store(key, v)
	return v, false, nil
}

// Ensure Table implements Store.
var _ Store[int] = (*Table[int])(nil)
