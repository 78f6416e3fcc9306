package view

import (
	"sync"

	"livelist/core/cache"
)

// Materialized maps each element of a View through fn and memoizes the
// results per generation.
type Materialized[T, V any] struct {
	view *View[T]
	fn   func(T) (V, error)

	mu         sync.Mutex
	generation uint64
	cache      *cache.Tiered[V]
}

// Materialize creates a materialized projection of v.
func Materialize[T, V any](v *View[T], fn func(T) (V, error)) *Materialized[T, V] {
	return &Materialized[T, V]{view: v, fn: fn}
}

// At returns fn applied to the element at index of the latest snapshot.
// The result is computed at most once per generation unless released.
func (m *Materialized[T, V]) At(index int) (V, error) {
	return m.current().At(index)
}

// Subrange returns a cached view over [from, to) of the current generation.
func (m *Materialized[T, V]) Subrange(from, to int) (*cache.Tiered[V], error) {
	return m.current().Subrange(from, to)
}

// Stats returns the counters of the current generation's cache.
func (m *Materialized[T, V]) Stats() cache.Stats {
	return m.current().Stats()
}

// Release drops the strongly held results of the current generation.
func (m *Materialized[T, V]) Release() int {
	return m.current().Release()
}

func (m *Materialized[T, V]) current() *cache.Tiered[V] {
	snapshot, gen := m.view.Snapshot()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cache == nil || m.generation != gen {
		m.generation = gen
		m.cache = cache.New[V](cache.Func[V]{
			Length: func() int { return len(snapshot) },
			Get: func(index int) (V, error) {
				return m.fn(snapshot[index])
			},
		})
	}
	return m.cache
}
