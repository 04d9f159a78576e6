package cache

// Null is a no-op store that never keeps anything.
// Useful for testing or when every lookup should recompute.
type Null[V any] struct{}

// Load always returns a miss.
func (Null[V]) Load(string) (V, bool) {
	var zero V
	return zero, false
}

// Store does nothing.
func (Null[V]) Store(string, V) {}

// Ensure Null implements Store.
var _ Store[int] = Null[int]{}
