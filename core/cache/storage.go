package cache

import (
	"sync"
	"sync/atomic"
	"weak"
)

// Stats counts how lookups were resolved.
type Stats struct {
	StrongHits int64 `json:"strong_hits"`
	WeakHits   int64 `json:"weak_hits"`
	Misses     int64 `json:"misses"`
}

// Storage holds both tiers. It is shared by a Tiered view and all of its
// sub-ranges and is keyed by index in the backing sequence.
type Storage[T any] struct {
	strongMu sync.Mutex
	strong   map[int]*T

	weakMu sync.Mutex
	weak   map[int]weak.Pointer[T]

	strongHits atomic.Int64
	weakHits   atomic.Int64
	misses     atomic.Int64
}

// NewStorage creates empty tiers.
func NewStorage[T any]() *Storage[T] {
	return &Storage[T]{
		strong: make(map[int]*T),
		weak:   make(map[int]weak.Pointer[T]),
	}
}

func (s *Storage[T]) loadStrong(key int) (*T, bool) {
	s.strongMu.Lock()
	defer s.strongMu.Unlock()
	v, ok := s.strong[key]
	return v, ok
}

func (s *Storage[T]) storeStrong(key int, v *T) {
	s.strongMu.Lock()
	s.strong[key] = v
	s.strongMu.Unlock()
}

// loadWeak returns the value if it has not been reclaimed.
func (s *Storage[T]) loadWeak(key int) *T {
	s.weakMu.Lock()
	defer s.weakMu.Unlock()
	wp, ok := s.weak[key]
	if !ok {
		return nil
	}
	return wp.Value()
}

func (s *Storage[T]) storeWeak(key int, v *T) {
	s.weakMu.Lock()
	s.weak[key] = weak.Make(v)
	s.weakMu.Unlock()
}

// Release empties the strong tier. Values stay reachable through the weak
// tier until the garbage collector reclaims them.
func (s *Storage[T]) Release() int {
	s.strongMu.Lock()
	defer s.strongMu.Unlock()
	n := len(s.strong)
	clear(s.strong)
	return n
}

// Stats returns a snapshot of the hit and miss counters.
func (s *Storage[T]) Stats() Stats {
	return Stats{
		StrongHits: s.strongHits.Load(),
		WeakHits:   s.weakHits.Load(),
		Misses:     s.misses.Load(),
	}
}
