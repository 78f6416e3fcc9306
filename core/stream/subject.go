package stream

import (
	"sync"
	"sync/atomic"

	"livelist/core/list"
)

type subscriber[T any] struct {
	id     uint64
	fn     func(list.Update[T])
	active atomic.Bool

	// Until the replay has been handed to fn, deliveries from the emitter
	// are parked in pending so fn never runs concurrently or out of order.
	mu      sync.Mutex
	ready   bool
	pending []list.Update[T]
}

func (sub *subscriber[T]) deliver(u list.Update[T]) {
	if !sub.active.Load() {
		return
	}
	sub.mu.Lock()
	if !sub.ready {
		sub.pending = append(sub.pending, u)
		sub.mu.Unlock()
		return
	}
	sub.mu.Unlock()
	sub.fn(u)
}

// replay hands the snapshot to fn on the calling goroutine, then whatever
// the emitter parked meanwhile, and only then lets the emitter deliver
// directly.
func (sub *subscriber[T]) replay(snapshot list.Update[T]) {
	defer func() {
		if r := recover(); r != nil {
			sub.mu.Lock()
			sub.ready = true
			sub.pending = nil
			sub.mu.Unlock()
			panic(r)
		}
	}()

	sub.fn(snapshot)
	for {
		sub.mu.Lock()
		batch := sub.pending
		sub.pending = nil
		if len(batch) == 0 {
			sub.ready = true
			sub.mu.Unlock()
			return
		}
		sub.mu.Unlock()

		for _, u := range batch {
			if sub.active.Load() {
				sub.fn(u)
			}
		}
	}
}

// Subject multicasts updates to its subscribers and replays the latest
// snapshot, as a Reloaded update, to every new subscriber.
// The replay runs on the subscribing goroutine before Subscribe returns, even
// when another goroutine or an outer callback is delivering. Later updates go
// through one Emitter, so each subscriber sees updates in publish order and
// never concurrently.
// The zero value is ready to use.
type Subject[T any] struct {
	mu      sync.Mutex
	subs    []*subscriber[T]
	nextID  uint64
	latest  []T
	seeded  bool
	emitter Emitter
}

// Subscribe implements Observable.
func (s *Subject[T]) Subscribe(fn func(list.Update[T])) Subscription {
	sub := &subscriber[T]{fn: fn}
	sub.active.Store(true)

	s.mu.Lock()
	sub.id = s.nextID
	s.nextID++
	s.subs = append(s.subs, sub)
	seeded, latest := s.seeded, s.latest
	if !seeded {
		sub.ready = true
	}
	s.mu.Unlock()

	if seeded {
		sub.replay(list.Reload(latest))
	}

	return SubscriptionFunc(func() {
		sub.active.Store(false)
		s.mu.Lock()
		for i, other := range s.subs {
			if other.id == sub.id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
	})
}

// Seed sets the snapshot replayed to new subscribers without delivering anything.
func (s *Subject[T]) Seed(snapshot []T) {
	s.mu.Lock()
	s.latest = snapshot
	s.seeded = true
	s.mu.Unlock()
}

// Publish records u as the latest state and delivers it to current subscribers.
func (s *Subject[T]) Publish(u list.Update[T]) {
	s.Stage(u)
	s.Flush()
}

// Stage records u and queues its delivery without running it. Callers that
// must order publications under their own lock stage under that lock and
// Flush after releasing it.
func (s *Subject[T]) Stage(u list.Update[T]) {
	s.mu.Lock()
	s.latest = u.List
	s.seeded = true
	targets := make([]*subscriber[T], len(s.subs))
	copy(targets, s.subs)
	s.emitter.Push(func() {
		for _, sub := range targets {
			sub.deliver(u)
		}
	})
	s.mu.Unlock()
}

// Flush delivers staged updates unless another goroutine is already doing so.
func (s *Subject[T]) Flush() {
	s.emitter.Drain()
}

// Reset forgets the latest snapshot; the next subscriber gets no replay
// until something is published again.
func (s *Subject[T]) Reset() {
	s.mu.Lock()
	s.latest = nil
	s.seeded = false
	s.mu.Unlock()
}

// Latest returns the last published snapshot.
func (s *Subject[T]) Latest() ([]T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.seeded
}

// Subscribers returns the number of active subscribers.
func (s *Subject[T]) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
