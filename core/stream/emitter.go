package stream

import "sync"

// Emitter runs queued work one item at a time, in enqueue order.
// The goroutine that enqueues while the emitter is idle becomes the drainer
// and keeps running work until the queue is empty, including work enqueued
// by the items it runs. Enqueue never blocks on a running item.
type Emitter struct {
	mu       sync.Mutex
	queue    []func()
	draining bool
}

// Enqueue appends work and drains the queue if no one else is.
func (e *Emitter) Enqueue(work func()) {
	e.mu.Lock()
	e.queue = append(e.queue, work)
	if e.draining {
		e.mu.Unlock()
		return
	}
	e.draining = true
	e.mu.Unlock()

	e.drain()
}

// Push appends work without draining. The caller must call Drain afterwards,
// typically after releasing a lock held while ordering the work.
func (e *Emitter) Push(work func()) {
	e.mu.Lock()
	e.queue = append(e.queue, work)
	e.mu.Unlock()
}

// Drain runs queued work unless another drainer is active.
func (e *Emitter) Drain() {
	e.mu.Lock()
	if e.draining || len(e.queue) == 0 {
		e.mu.Unlock()
		return
	}
	e.draining = true
	e.mu.Unlock()

	e.drain()
}

func (e *Emitter) drain() {
	// A panicking item ends this drain; the rest of the queue runs on the
	// next Enqueue or Drain.
	done := false
	defer func() {
		if !done {
			e.mu.Lock()
			e.draining = false
			e.mu.Unlock()
		}
	}()

	for {
		e.mu.Lock()
		if len(e.queue) == 0 {
			e.draining = false
			e.mu.Unlock()
			done = true
			return
		}
		work := e.queue[0]
		e.queue[0] = nil
		e.queue = e.queue[1:]
		e.mu.Unlock()

		work()
	}
}
