package stream

import (
	"context"
	"sync"
	"testing"
	"time"

	"livelist/core/list"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects updates and checks each one against the previous snapshot.
type recorder[T any] struct {
	mu      sync.Mutex
	t       *testing.T
	updates []list.Update[T]
	current []T
}

func (r *recorder[T]) record(u list.Update[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next, err := list.Replay(r.current, u)
	if !assert.NoError(r.t, err) {
		return
	}
	if len(next) > 0 || len(u.List) > 0 {
		assert.Equal(r.t, u.List, next)
	}
	r.current = next
	r.updates = append(r.updates, u)
}

func (r *recorder[T]) snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func TestEmitter_ReentrantEnqueueRunsAfterCurrentItem(t *testing.T) {
	var e Emitter
	var order []string

	e.Enqueue(func() {
		order = append(order, "outer-start")
		e.Enqueue(func() { order = append(order, "inner") })
		order = append(order, "outer-end")
	})

	assert.Equal(t, []string{"outer-start", "outer-end", "inner"}, order)
}

func TestEmitter_PushWaitsForDrain(t *testing.T) {
	var e Emitter
	ran := false
	e.Push(func() { ran = true })
	assert.False(t, ran)
	e.Drain()
	assert.True(t, ran)
}

func TestSubject_ReplaysLatestAsReload(t *testing.T) {
	var s Subject[string]
	var got []list.Update[string]

	sub := s.Subscribe(func(u list.Update[string]) { got = append(got, u) })
	assert.Empty(t, got, "nothing published yet")

	s.Publish(list.Reload([]string{"a"}))
	s.Publish(list.NewUpdate([]string{"a", "b"}, list.Inserted(1)))
	require.Len(t, got, 2)

	var late []list.Update[string]
	s.Subscribe(func(u list.Update[string]) { late = append(late, u) })
	require.Len(t, late, 1)
	assert.True(t, late[0].IsReload())
	assert.Equal(t, []string{"a", "b"}, late[0].List)

	sub.Unsubscribe()
	s.Publish(list.NewUpdate([]string{"a"}, list.Removed(1)))
	assert.Len(t, got, 2)
	assert.Len(t, late, 2)
	assert.Equal(t, 1, s.Subscribers())

	s.Reset()
	_, ok := s.Latest()
	assert.False(t, ok)
}

func TestList_Mutations(t *testing.T) {
	l := NewList("a", "b", "c")
	rec := &recorder[string]{t: t}
	sub := l.Subscribe(rec.record)
	defer sub.Unsubscribe()

	require.Len(t, rec.updates, 1, "subscribe delivers the snapshot synchronously")
	assert.True(t, rec.updates[0].IsReload())

	require.NoError(t, l.Insert(1, "x"))
	require.NoError(t, l.Move(0, 3))
	require.NoError(t, l.Remove(2))
	require.NoError(t, l.Set(0, "y"))
	l.Append("d", "e")

	assert.Equal(t, l.Snapshot(), rec.snapshot())
	assert.Equal(t, []string{"y", "b", "a", "d", "e"}, l.Snapshot())

	l.Replace("z")
	assert.Equal(t, []string{"z"}, rec.snapshot())

	assert.ErrorIs(t, l.Insert(5, "q"), list.ErrOutOfRange)
	assert.ErrorIs(t, l.Remove(-1), list.ErrOutOfRange)
	assert.ErrorIs(t, l.Move(0, 1), list.ErrOutOfRange)
	_, err := l.At(1)
	assert.ErrorIs(t, err, list.ErrOutOfRange)
}

func TestList_Patch(t *testing.T) {
	l := NewList("a", "b", "c")
	rec := &recorder[string]{t: t}
	defer l.Subscribe(rec.record).Unsubscribe()

	err := l.Patch(func(items []string) ([]string, []list.Change, error) {
		return []string{"b", "c", "d"}, []list.Change{list.Removed(0), list.Inserted(2)}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "d"}, rec.snapshot())
	assert.Len(t, rec.updates, 2)

	err = l.Patch(func(items []string) ([]string, []list.Change, error) {
		return []string{"x"}, []list.Change{list.Inserted(0)}, nil
	})
	assert.ErrorIs(t, err, list.ErrMalformedChange)
	assert.Equal(t, []string{"b", "c", "d"}, l.Snapshot())

	// An empty batch publishes nothing.
	require.NoError(t, l.Patch(func(items []string) ([]string, []list.Change, error) {
		return items, nil, nil
	}))
	assert.Len(t, rec.updates, 2)
}

func TestList_MutationInsideCallbackIsDeliveredAfterwards(t *testing.T) {
	l := NewList(1)
	rec := &recorder[int]{t: t}
	l.Subscribe(rec.record)

	l.Subscribe(func(u list.Update[int]) {
		if len(u.List) == 2 {
			l.Append(3)
		}
	})
	l.Append(2)

	assert.Equal(t, []int{1, 2, 3}, rec.snapshot())
}

func TestCoalescer_MergesRelativeToLastDelivered(t *testing.T) {
	var delivered []list.Update[string]
	c := NewCoalescer(func(u list.Update[string]) { delivered = append(delivered, u) })

	c.Offer(list.NewUpdate([]string{"a"}, list.Inserted(0)))
	c.Offer(list.NewUpdate([]string{"a", "b"}, list.Inserted(1)))
	assert.True(t, c.Pending())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = c.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return !c.Pending() }, time.Second, time.Millisecond)
	cancel()
	<-done

	require.Len(t, delivered, 1)
	assert.Equal(t, []string{"a", "b"}, delivered[0].List)
	assert.Equal(t, []list.Change{list.Inserted(0), list.Inserted(1)}, delivered[0].Changes)
}

func TestCoalescer_ReloadCollapses(t *testing.T) {
	c := NewCoalescer(func(list.Update[int]) {})
	c.Offer(list.NewUpdate([]int{1}, list.Inserted(0)))
	c.Offer(list.Reload([]int{7, 8}))
	c.Offer(list.NewUpdate([]int{7}, list.Removed(1)))

	require.NotNil(t, c.pending)
	assert.Equal(t, list.Reload([]int{7}), *c.pending)
}

func TestCoalesce_DeliversLatestState(t *testing.T) {
	l := NewList[int]()
	rec := &recorder[int]{t: t}
	sub := Coalesce(context.Background(), l, rec.record)
	defer sub.Unsubscribe()

	for i := 0; i < 50; i++ {
		l.Append(i)
	}

	assert.Eventually(t, func() bool { return len(rec.snapshot()) == 50 }, time.Second, time.Millisecond)
	assert.Equal(t, l.Snapshot(), rec.snapshot())
}

func TestEmitter_PanickingItemDoesNotStall(t *testing.T) {
	var e Emitter
	ran := 0

	assert.Panics(t, func() {
		e.Push(func() { panic("boom") })
		e.Push(func() { ran++ })
		e.Drain()
	})
	assert.Zero(t, ran)

	e.Enqueue(func() { ran++ })
	assert.Equal(t, 2, ran, "queued work runs on the next drain")
}

func TestList_SubscriberPanicDoesNotStallDelivery(t *testing.T) {
	l := NewList("a")
	rec := &recorder[string]{t: t}
	defer l.Subscribe(rec.record).Unsubscribe()

	panicked := false
	defer l.Subscribe(func(u list.Update[string]) {
		if len(u.List) == 2 && !panicked {
			panicked = true
			panic("subscriber failed")
		}
	}).Unsubscribe()

	assert.Panics(t, func() { l.Append("b") })
	l.Append("c")
	assert.Equal(t, []string{"a", "b", "c"}, rec.snapshot())

	var late []list.Update[string]
	l.Subscribe(func(u list.Update[string]) { late = append(late, u) })
	require.Len(t, late, 1)
	assert.Equal(t, list.Reload([]string{"a", "b", "c"}), late[0])
}

func TestSubject_ReplayDuringDelivery(t *testing.T) {
	var s Subject[string]
	s.Seed([]string{"a"})

	var late []list.Update[string]
	var replayedInline bool
	s.Subscribe(func(u list.Update[string]) {
		if len(u.List) != 2 || late != nil {
			return
		}
		s.Subscribe(func(u list.Update[string]) { late = append(late, u) })
		replayedInline = len(late) == 1
		// Staged while the outer delivery is still running.
		s.Publish(list.NewUpdate([]string{"a", "b", "c"}, list.Inserted(2)))
	})

	s.Publish(list.NewUpdate([]string{"a", "b"}, list.Inserted(1)))

	assert.True(t, replayedInline, "the replay does not wait for the running delivery")
	require.Len(t, late, 2)
	assert.Equal(t, list.Reload([]string{"a", "b"}), late[0])
	assert.Equal(t, []list.Change{list.Inserted(2)}, late[1].Changes)
}

func TestSubject_ConcurrentSubscribersSeeOrderedUpdates(t *testing.T) {
	l := NewList[int]()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			l.Append(i)
		}
	}()

	var recs []*recorder[int]
	var subs []Subscription
	for i := 0; i < 20; i++ {
		rec := &recorder[int]{t: t}
		recs = append(recs, rec)
		subs = append(subs, l.Subscribe(rec.record))
	}
	<-done

	for i, rec := range recs {
		assert.Equal(t, l.Snapshot(), rec.snapshot(), "subscriber %d", i)
		subs[i].Unsubscribe()
	}
}
