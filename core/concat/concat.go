package concat

import (
	"sync"
	"sync/atomic"

	"livelist/core/list"
	"livelist/core/stream"

	"go.uber.org/zap"
)

// Concat is the composite of the lists emitted by a parent list of lists.
// All subscribers share one Engine. The first subscriber builds it and the
// last one to leave tears it down synchronously; nothing survives a gap with
// no subscribers, so the next subscriber starts from a fresh Reloaded.
//
// Concat implements stream.Observable and can itself be the child of
// another Concat.
type Concat[T any] struct {
	parent stream.Observable[stream.Observable[T]]
	opts   []Option
	logger *zap.Logger

	refs   atomic.Int64
	builds atomic.Int64

	mu     sync.Mutex
	engine *Engine[T]
	out    stream.Subject[T]
}

// New creates a composite over parent. No subscription is made until the
// first consumer subscribes.
func New[T any](parent stream.Observable[stream.Observable[T]], opts ...Option) *Concat[T] {
	return &Concat[T]{
		parent: parent,
		opts:   opts,
		logger: buildOptions(opts).logger,
	}
}

// Subscribe implements stream.Observable.
func (c *Concat[T]) Subscribe(fn func(list.Update[T])) stream.Subscription {
	sub := c.out.Subscribe(fn)
	c.acquire()

	return stream.SubscriptionFunc(func() {
		sub.Unsubscribe()
		c.release()
	})
}

// Subscribers returns the current number of consumers.
func (c *Concat[T]) Subscribers() int64 {
	return c.refs.Load()
}

// Builds returns how many engines have been built so far.
func (c *Concat[T]) Builds() int64 {
	return c.builds.Load()
}

// State returns the state of the current engine, or StateUninitialized when
// there is none.
func (c *Concat[T]) State() State {
	c.mu.Lock()
	e := c.engine
	c.mu.Unlock()
	if e == nil {
		return StateUninitialized
	}
	return e.State()
}

func (c *Concat[T]) acquire() {
	for {
		n := c.refs.Load()
		if c.refs.CompareAndSwap(n, n+1) {
			if n == 0 {
				c.build()
			}
			return
		}
	}
}

func (c *Concat[T]) release() {
	for {
		n := c.refs.Load()
		if n <= 0 {
			return
		}
		if c.refs.CompareAndSwap(n, n-1) {
			if n == 1 {
				c.teardown()
			}
			return
		}
	}
}

func (c *Concat[T]) build() {
	c.mu.Lock()
	// The previous engine is still there when a subscriber arrived before
	// its teardown ran. No subscriber left means a later 1→0 already won.
	if c.engine != nil || c.refs.Load() == 0 {
		c.mu.Unlock()
		return
	}
	e := NewEngine(c.parent, &c.out, c.opts...)
	c.engine = e
	c.builds.Add(1)
	c.mu.Unlock()

	c.logger.Debug("building concat engine", zap.Int64("build", c.builds.Load()))
	// Start runs outside c.mu: the parent and children may deliver
	// synchronously, and a consumer may unsubscribe from inside that delivery.
	e.Start()
}

func (c *Concat[T]) teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.refs.Load() != 0 || c.engine == nil {
		return
	}
	c.engine.Close()
	c.engine = nil
	c.out.Reset()
	c.logger.Debug("concat engine released")
}
