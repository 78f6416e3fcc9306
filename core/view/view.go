// Package view keeps a materialized copy of an observable list.
//
// A View subscribes once and holds the latest snapshot together with a
// generation counter that increases on every update. Index based reads go
// through a tiered cache that is replaced with each generation, since any
// change may shift indices.
package view

import (
	"sync"

	"livelist/core/cache"
	"livelist/core/list"
	"livelist/core/stream"

	"go.uber.org/zap"
)

// View is the latest state of an observable list.
type View[T any] struct {
	logger *zap.Logger

	mu         sync.RWMutex
	snapshot   []T
	generation uint64
	cache      *cache.Tiered[T]
	changes    int

	sub stream.Subscription
}

// New subscribes to obs. Observables that deliver their current snapshot on
// subscribe, as stream.List and concat.Concat do, leave the view populated
// when New returns.
func New[T any](obs stream.Observable[T], logger *zap.Logger) *View[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &View[T]{
		logger: logger,
		cache:  cache.New[T](cache.Slice[T](nil)),
	}
	v.sub = obs.Subscribe(v.apply)
	return v
}

func (v *View[T]) apply(u list.Update[T]) {
	v.mu.Lock()
	v.snapshot = u.List
	v.generation++
	v.cache = cache.New[T](cache.Slice[T](u.List))
	v.changes += len(u.Changes)
	gen := v.generation
	v.mu.Unlock()

	v.logger.Debug("view updated",
		zap.Uint64("generation", gen),
		zap.Int("size", len(u.List)),
		zap.Int("changes", len(u.Changes)),
		zap.Bool("reload", u.IsReload()),
	)
}

// Snapshot returns the latest snapshot and its generation.
func (v *View[T]) Snapshot() ([]T, uint64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.snapshot, v.generation
}

// Generation returns the number of updates applied.
func (v *View[T]) Generation() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.generation
}

// Len returns the size of the latest snapshot.
func (v *View[T]) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.snapshot)
}

// At reads the element at index through the current generation's cache.
func (v *View[T]) At(index int) (T, error) {
	return v.Cache().At(index)
}

// Cache returns the tiered cache of the current generation.
func (v *View[T]) Cache() *cache.Tiered[T] {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cache
}

// Changes returns the total number of changes applied.
func (v *View[T]) Changes() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.changes
}

// Close unsubscribes from the source.
func (v *View[T]) Close() {
	v.sub.Unsubscribe()
}
