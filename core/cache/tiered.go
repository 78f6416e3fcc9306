package cache

import (
	"fmt"
)

// Tiered is a memoizing view over a Sequence.
type Tiered[T any] struct {
	backing Sequence[T]
	storage *Storage[T]

	offset int
	// length is -1 for a view that follows the backing length.
	length int
}

// New wraps backing with empty tiers.
func New[T any](backing Sequence[T]) *Tiered[T] {
	return &Tiered[T]{
		backing: backing,
		storage: NewStorage[T](),
		length:  -1,
	}
}

// Len returns the number of elements visible through the view.
func (t *Tiered[T]) Len() int {
	if t.length >= 0 {
		return t.length
	}
	return t.backing.Len()
}

// At resolves the element at index. Errors from the backing accessor are
// returned as is and nothing is cached for them.
func (t *Tiered[T]) At(index int) (T, error) {
	var zero T
	if n := t.Len(); index < 0 || index >= n {
		return zero, fmt.Errorf("%w: %d not in [0,%d)", ErrOutOfRange, index, n)
	}
	key := t.offset + index
	s := t.storage

	if v, ok := s.loadStrong(key); ok {
		s.strongHits.Add(1)
		return *v, nil
	}
	if v := s.loadWeak(key); v != nil {
		s.weakHits.Add(1)
		s.storeStrong(key, v)
		return *v, nil
	}

	s.misses.Add(1)
	value, err := t.backing.At(key)
	if err != nil {
		return zero, err
	}
	v := &value
	s.storeStrong(key, v)
	s.storeWeak(key, v)
	return value, nil
}

// Subrange returns the view of [from, to) relative to t. It shares t's Storage.
func (t *Tiered[T]) Subrange(from, to int) (*Tiered[T], error) {
	if n := t.Len(); from < 0 || to < from || to > n {
		return nil, fmt.Errorf("%w: subrange [%d,%d) of %d elements", ErrOutOfRange, from, to, n)
	}
	return &Tiered[T]{
		backing: t.backing,
		storage: t.storage,
		offset:  t.offset + from,
		length:  to - from,
	}, nil
}

// Storage returns the tiers shared by this view and its sub-ranges.
func (t *Tiered[T]) Storage() *Storage[T] {
	return t.storage
}

// Release empties the shared strong tier and returns how many values it held.
func (t *Tiered[T]) Release() int {
	return t.storage.Release()
}

// Stats returns the shared hit and miss counters.
func (t *Tiered[T]) Stats() Stats {
	return t.storage.Stats()
}
