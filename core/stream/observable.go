// Package stream is the in-process transport for observable lists.
//
// Every Observable delivers list.Update values one at a time per subscriber.
// The first delivery to a new subscriber is a Reloaded update carrying the
// current snapshot, and it may happen synchronously inside Subscribe.
//
// # Components
//
//   - Emitter: a serializing FIFO drain. Work enqueued while another goroutine
//     (or an outer call on the same goroutine) is draining is delivered by
//     that drainer, in order, without re-entering the caller.
//   - Subject: multicast fan-out with replay of the latest snapshot.
//   - List: a mutable list that publishes an Update for each mutation.
//   - Coalescer: keep-latest backpressure for slow consumers.
package stream

import (
	"sync"

	"livelist/core/list"
)

// Observable is a source of list updates.
type Observable[T any] interface {
	// Subscribe registers fn for every update until the returned
	// Subscription is cancelled.
	Subscribe(fn func(list.Update[T])) Subscription
}

// Subscription cancels a registration made with Observable.Subscribe.
type Subscription interface {
	Unsubscribe()
}

// SubscriptionFunc adapts a function to Subscription. It runs at most once.
func SubscriptionFunc(fn func()) Subscription {
	return &funcSubscription{fn: fn}
}

type funcSubscription struct {
	once sync.Once
	fn   func()
}

func (s *funcSubscription) Unsubscribe() {
	s.once.Do(s.fn)
}
