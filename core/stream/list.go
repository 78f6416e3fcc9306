package stream

import (
	"fmt"
	"sync"

	"livelist/core/list"
)

// List is a mutable observable list. Every mutation produces a new snapshot
// and publishes it with the matching changes. Subscribing delivers the
// current snapshot synchronously, before Subscribe returns.
type List[T any] struct {
	mu      sync.Mutex
	items   []T
	subject Subject[T]
}

// NewList creates a list holding items.
func NewList[T any](items ...T) *List[T] {
	l := &List[T]{items: append([]T(nil), items...)}
	l.subject.Seed(l.items)
	return l
}

// Subscribe implements Observable.
func (l *List[T]) Subscribe(fn func(list.Update[T])) Subscription {
	return l.subject.Subscribe(fn)
}

// Subscribers returns the number of active subscribers.
func (l *List[T]) Subscribers() int {
	return l.subject.Subscribers()
}

// Snapshot returns the current items. The slice must not be modified.
func (l *List[T]) Snapshot() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// At returns the item at index.
func (l *List[T]) At(index int) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.items) {
		var zero T
		return zero, fmt.Errorf("%w: %d not in [0,%d)", list.ErrOutOfRange, index, len(l.items))
	}
	return l.items[index], nil
}

// Insert adds v at index.
func (l *List[T]) Insert(index int, v T) error {
	return l.mutate(func(items []T) ([]T, []list.Change, error) {
		if index < 0 || index > len(items) {
			return nil, nil, fmt.Errorf("%w: insert at %d into %d items", list.ErrOutOfRange, index, len(items))
		}
		next := make([]T, 0, len(items)+1)
		next = append(next, items[:index]...)
		next = append(next, v)
		next = append(next, items[index:]...)
		return next, []list.Change{list.Inserted(index)}, nil
	})
}

// Append adds values at the end.
func (l *List[T]) Append(values ...T) {
	_ = l.mutate(func(items []T) ([]T, []list.Change, error) {
		next := make([]T, 0, len(items)+len(values))
		next = append(next, items...)
		changes := make([]list.Change, 0, len(values))
		for _, v := range values {
			changes = append(changes, list.Inserted(len(next)))
			next = append(next, v)
		}
		return next, changes, nil
	})
}

// Remove drops the item at index.
func (l *List[T]) Remove(index int) error {
	return l.mutate(func(items []T) ([]T, []list.Change, error) {
		if index < 0 || index >= len(items) {
			return nil, nil, fmt.Errorf("%w: remove %d from %d items", list.ErrOutOfRange, index, len(items))
		}
		next := make([]T, 0, len(items)-1)
		next = append(next, items[:index]...)
		next = append(next, items[index+1:]...)
		return next, []list.Change{list.Removed(index)}, nil
	})
}

// Move relocates the item at from to index to.
func (l *List[T]) Move(from, to int) error {
	return l.mutate(func(items []T) ([]T, []list.Change, error) {
		if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
			return nil, nil, fmt.Errorf("%w: move %d to %d in %d items", list.ErrOutOfRange, from, to, len(items))
		}
		next := make([]T, 0, len(items))
		next = append(next, items[:from]...)
		next = append(next, items[from+1:]...)
		next = append(next[:to], append([]T{items[from]}, next[to:]...)...)
		return next, []list.Change{list.Moved(from, to)}, nil
	})
}

// Set replaces the item at index, published as a removal followed by an insertion.
func (l *List[T]) Set(index int, v T) error {
	return l.mutate(func(items []T) ([]T, []list.Change, error) {
		if index < 0 || index >= len(items) {
			return nil, nil, fmt.Errorf("%w: set %d in %d items", list.ErrOutOfRange, index, len(items))
		}
		next := append([]T(nil), items...)
		next[index] = v
		return next, []list.Change{list.Removed(index), list.Inserted(index)}, nil
	})
}

// Replace swaps the whole content and publishes a Reloaded update.
func (l *List[T]) Replace(items ...T) {
	_ = l.mutate(func([]T) ([]T, []list.Change, error) {
		return append([]T(nil), items...), []list.Change{list.Reloaded()}, nil
	})
}

// Patch applies fn to the current items and publishes the result with the
// changes fn reports. The changes must turn the current items into the new
// ones; a batch that does not is rejected and nothing is published.
func (l *List[T]) Patch(fn func(items []T) ([]T, []list.Change, error)) error {
	return l.mutate(func(items []T) ([]T, []list.Change, error) {
		next, changes, err := fn(items)
		if err != nil {
			return nil, nil, err
		}
		if err := list.Validate(len(items), list.NewUpdate(next, changes...)); err != nil {
			return nil, nil, fmt.Errorf("invalid patch: %w", err)
		}
		return next, changes, nil
	})
}

func (l *List[T]) mutate(fn func(items []T) ([]T, []list.Change, error)) error {
	l.mu.Lock()
	next, changes, err := fn(l.items)
	if err != nil {
		l.mu.Unlock()
		return err
	}
	if len(changes) == 0 {
		l.mu.Unlock()
		return nil
	}
	l.items = next
	l.subject.Stage(list.NewUpdate(next, changes...))
	l.mu.Unlock()

	l.subject.Flush()
	return nil
}
