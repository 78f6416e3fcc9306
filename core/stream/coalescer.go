package stream

import (
	"context"
	"sync"

	"livelist/core/list"
)

// Coalescer keeps at most one pending update for a slow consumer.
// Updates offered while the consumer is busy are merged into one batch that
// is relative to the last snapshot actually delivered: changes are
// concatenated, and a Reloaded anywhere collapses the batch to a Reloaded of
// the newest snapshot. No change is dropped silently.
type Coalescer[T any] struct {
	mu      sync.Mutex
	pending *list.Update[T]
	signal  chan struct{}
	fn      func(list.Update[T])
}

// NewCoalescer creates a Coalescer delivering to fn. Nothing is delivered
// until Run is called.
func NewCoalescer[T any](fn func(list.Update[T])) *Coalescer[T] {
	return &Coalescer[T]{
		signal: make(chan struct{}, 1),
		fn:     fn,
	}
}

// Offer merges u into the pending batch. It never blocks.
func (c *Coalescer[T]) Offer(u list.Update[T]) {
	c.mu.Lock()
	switch {
	case c.pending == nil:
		c.pending = &list.Update[T]{
			List:    u.List,
			Changes: append([]list.Change(nil), u.Changes...),
		}
	case c.pending.IsReload() || u.IsReload():
		merged := list.Reload(u.List)
		c.pending = &merged
	default:
		c.pending.List = u.List
		c.pending.Changes = append(c.pending.Changes, u.Changes...)
	}
	c.mu.Unlock()

	select {
	case c.signal <- struct{}{}:
	default:
	}
}

// Pending reports whether a batch is waiting for delivery.
func (c *Coalescer[T]) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// Run delivers batches until ctx is done.
func (c *Coalescer[T]) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.signal:
			c.mu.Lock()
			batch := c.pending
			c.pending = nil
			c.mu.Unlock()

			if batch != nil {
				c.fn(*batch)
			}
		}
	}
}

// Coalesce subscribes to obs and delivers to fn from a separate goroutine
// with keep-latest backpressure. Unsubscribing stops the goroutine.
func Coalesce[T any](ctx context.Context, obs Observable[T], fn func(list.Update[T])) Subscription {
	ctx, cancel := context.WithCancel(ctx)
	c := NewCoalescer(fn)
	go func() {
		_ = c.Run(ctx)
	}()

	sub := obs.Subscribe(c.Offer)
	return SubscriptionFunc(func() {
		sub.Unsubscribe()
		cancel()
	})
}
