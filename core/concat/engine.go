package concat

import (
	"slices"
	"sync"

	"livelist/core/list"
	"livelist/core/stream"

	"go.uber.org/zap"
)

// State is the lifecycle state of an Engine.
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateActive
	// StateTornDown is terminal. A torn down engine is never restarted.
	StateTornDown
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateActive:
		return "active"
	case StateTornDown:
		return "torn-down"
	default:
		return "unknown"
	}
}

type handle uint64

// phase tracks how far a child's first snapshot has come.
type phase uint8

const (
	// phaseSubscribing: emissions are buffered and folded in by attach.
	phaseSubscribing phase = iota
	// phaseAwaiting: Subscribe returned without an emission; the first one
	// to arrive is published as the child's initial insertions.
	phaseAwaiting
	phaseLive
)

// child is the engine's record for one attached list.
type child[T any] struct {
	handle   handle
	position int
	sub      stream.Subscription
	latest   []T

	// mu guards phase and buffer, which the child's callback reads
	// without the engine lock.
	mu     sync.Mutex
	phase  phase
	buffer []list.Update[T]
}

// fault is a debug assertion failure recorded under the engine lock and
// reported after it is released, since DPanic may panic.
type fault struct {
	msg    string
	fields []zap.Field
}

// Engine concatenates the lists emitted by a parent list of lists.
// It holds one subscription per attached child and publishes composite
// updates to its output Subject. All state mutation happens under one lock;
// output is staged under that lock and flushed after releasing it.
type Engine[T any] struct {
	mu        sync.Mutex
	state     State
	parent    stream.Observable[stream.Observable[T]]
	parentSub stream.Subscription
	parentLen int

	// children is an arena keyed by stable handles; order maps position to handle.
	children map[handle]*child[T]
	order    []handle
	next     handle

	out  *stream.Subject[T]
	size int

	logger   *zap.Logger
	validate bool
	faults   []fault
}

// NewEngine creates an engine over parent that publishes to out.
// Nothing is subscribed until Start.
func NewEngine[T any](parent stream.Observable[stream.Observable[T]], out *stream.Subject[T], opts ...Option) *Engine[T] {
	o := buildOptions(opts)
	return &Engine[T]{
		parent:   parent,
		children: make(map[handle]*child[T]),
		out:      out,
		logger:   o.logger,
		validate: o.validate,
	}
}

// Start subscribes to the parent. The parent's first emission attaches every
// child and publishes a Reloaded update of the composite.
func (e *Engine[T]) Start() {
	e.mu.Lock()
	if e.state != StateUninitialized {
		e.mu.Unlock()
		return
	}
	e.state = StateInitializing
	e.mu.Unlock()

	sub := e.parent.Subscribe(e.onParent)

	e.mu.Lock()
	if e.state == StateTornDown {
		e.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	e.parentSub = sub
	e.mu.Unlock()
}

// Close unsubscribes from the parent and every child and discards all state.
func (e *Engine[T]) Close() {
	e.mu.Lock()
	if e.state == StateTornDown {
		e.mu.Unlock()
		return
	}
	e.state = StateTornDown
	for _, h := range e.order {
		if c := e.children[h]; c.sub != nil {
			c.sub.Unsubscribe()
		}
	}
	e.children = nil
	e.order = nil
	parentSub := e.parentSub
	e.parentSub = nil
	e.mu.Unlock()

	if parentSub != nil {
		parentSub.Unsubscribe()
	}
	e.logger.Debug("concat engine torn down")
}

// State returns the lifecycle state.
func (e *Engine[T]) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Sizes returns the current size of every child in order.
func (e *Engine[T]) Sizes() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sizes()
}

func (e *Engine[T]) onParent(u list.Update[stream.Observable[T]]) {
	e.mu.Lock()
	switch e.state {
	case StateInitializing:
		e.reattach(u.List)
		e.state = StateActive
		e.emit(list.Reload(e.snapshot()))
		e.logger.Debug("concat engine active", zap.Int("children", len(e.order)), zap.Int("size", e.size))
	case StateActive:
		// A no-op batch, such as Moved(p,p) or an empty child, leaves the
		// composite as it was.
		if changes := e.applyParent(u); len(changes) > 0 {
			e.emit(list.NewUpdate(e.snapshot(), changes...))
		}
	default:
		e.mu.Unlock()
		return
	}
	e.parentLen = len(u.List)
	e.unlockAndFlush()
}

// unlockAndFlush releases e.mu, reports the faults recorded while it was
// held and delivers staged output. If a report panics, the staged output
// stays queued for the next flush.
func (e *Engine[T]) unlockAndFlush() {
	faults := e.faults
	e.faults = nil
	e.mu.Unlock()

	for _, f := range faults {
		e.logger.DPanic(f.msg, f.fields...)
	}
	e.out.Flush()
}

// fail records a debug assertion failure. Callers hold e.mu.
func (e *Engine[T]) fail(msg string, fields ...zap.Field) {
	e.faults = append(e.faults, fault{msg: msg, fields: fields})
}

func (e *Engine[T]) applyParent(u list.Update[stream.Observable[T]]) []list.Change {
	if u.IsReload() {
		e.reattach(u.List)
		e.logger.Debug("children reloaded", zap.Int("children", len(u.List)))
		return []list.Change{list.Reloaded()}
	}

	targets, err := list.InsertTargets(e.parentLen, u.Changes)
	if err != nil {
		e.fail("parent update is malformed, reloading", zap.Error(err))
		e.reattach(u.List)
		return []list.Change{list.Reloaded()}
	}

	var changes []list.Change
	for k, c := range u.Changes {
		switch c.Type {
		case list.ChangeInserted:
			// A child inserted and removed again within the batch gets an
			// empty placeholder so later indices stay aligned.
			var source stream.Observable[T]
			if targets[k] >= 0 {
				source = u.List[targets[k]]
			}
			changes = append(changes, e.attach(c.To, source)...)
		case list.ChangeRemoved:
			changes = append(changes, e.detach(c.From)...)
		case list.ChangeMoved:
			changes = append(changes, e.move(c.From, c.To)...)
		}
	}
	return changes
}

// attach subscribes to source as the child at pos and returns the insertions
// of its initial content.
func (e *Engine[T]) attach(pos int, source stream.Observable[T]) []list.Change {
	c := &child[T]{handle: e.next, position: pos}
	e.next++
	e.children[c.handle] = c
	e.order = slices.Insert(e.order, pos, c.handle)
	e.renumber(pos+1, len(e.order))

	if source != nil {
		c.sub = source.Subscribe(func(u list.Update[T]) {
			e.onChild(c, u)
		})
	}

	// Emissions delivered while subscribing were buffered; the last one
	// carries the child's initial snapshot. A source that has not emitted
	// yet contributes nothing until its first emission arrives.
	c.mu.Lock()
	buffered := c.buffer
	c.buffer = nil
	switch {
	case len(buffered) > 0, source == nil:
		c.phase = phaseLive
	default:
		c.phase = phaseAwaiting
	}
	c.mu.Unlock()
	if n := len(buffered); n > 0 {
		c.latest = buffered[n-1].List
	}

	offset := e.offset(pos)
	e.logger.Debug("child attached", zap.Int("position", pos), zap.Int("offset", offset), zap.Int("size", len(c.latest)))
	return inserted(offset, len(c.latest))
}

func inserted(offset, n int) []list.Change {
	changes := make([]list.Change, 0, n)
	for i := 0; i < n; i++ {
		changes = append(changes, list.Inserted(offset+i))
	}
	return changes
}

// detach unsubscribes the child at pos and returns the removals of its content.
func (e *Engine[T]) detach(pos int) []list.Change {
	if pos < 0 || pos >= len(e.order) {
		e.fail("detach out of range", zap.Int("position", pos), zap.Int("children", len(e.order)))
		return nil
	}
	c := e.children[e.order[pos]]
	offset := e.offset(pos)

	if c.sub != nil {
		c.sub.Unsubscribe()
	}
	delete(e.children, c.handle)
	e.order = slices.Delete(e.order, pos, pos+1)
	e.renumber(pos, len(e.order))

	// Each removal is applied to the already shrunk list, so the same index
	// repeats.
	changes := make([]list.Change, 0, len(c.latest))
	for range c.latest {
		changes = append(changes, list.Removed(offset))
	}
	e.logger.Debug("child detached", zap.Int("position", pos), zap.Int("offset", offset), zap.Int("size", len(c.latest)))
	return changes
}

// move repositions the child at from to index to and returns one Moved per element.
func (e *Engine[T]) move(from, to int) []list.Change {
	if from < 0 || from >= len(e.order) || to < 0 || to >= len(e.order) {
		e.fail("move out of range", zap.Int("from", from), zap.Int("to", to), zap.Int("children", len(e.order)))
		return nil
	}
	h := e.order[from]
	c := e.children[h]
	fromOffset := e.offset(from)

	e.order = slices.Delete(e.order, from, from+1)
	e.order = slices.Insert(e.order, to, h)
	e.renumber(min(from, to), max(from, to)+1)

	toOffset := e.offset(to)
	n := len(c.latest)
	changes := make([]list.Change, 0, n)
	switch {
	case toOffset > fromOffset:
		// Moving forward: the tail goes first so the elements still waiting
		// to move keep their indices.
		for i := n - 1; i >= 0; i-- {
			changes = append(changes, list.Moved(fromOffset+i, toOffset+i))
		}
	case toOffset < fromOffset:
		for i := 0; i < n; i++ {
			changes = append(changes, list.Moved(fromOffset+i, toOffset+i))
		}
	}
	e.logger.Debug("child moved", zap.Int("from", from), zap.Int("to", to), zap.Int("size", n))
	return changes
}

// reattach drops every child and attaches sources as fresh children.
func (e *Engine[T]) reattach(sources []stream.Observable[T]) {
	for _, h := range e.order {
		if c := e.children[h]; c.sub != nil {
			c.sub.Unsubscribe()
		}
	}
	clear(e.children)
	e.order = e.order[:0]

	for i, source := range sources {
		e.attach(i, source)
	}
}

func (e *Engine[T]) onChild(c *child[T], u list.Update[T]) {
	c.mu.Lock()
	first := false
	switch c.phase {
	case phaseSubscribing:
		c.buffer = append(c.buffer, u)
		c.mu.Unlock()
		return
	case phaseAwaiting:
		first = true
		c.phase = phaseLive
	}
	c.mu.Unlock()

	e.mu.Lock()
	if e.state != StateActive || e.children[c.handle] != c {
		e.mu.Unlock()
		return
	}
	offset := e.offset(c.position)
	var changes []list.Change
	if first {
		// The first emission is authoritative whatever it carries.
		changes = inserted(offset, len(u.List))
	} else {
		changes = TranslateAll(offset, offset, u.Changes)
	}
	c.latest = u.List
	if len(changes) > 0 {
		e.emit(list.NewUpdate(e.snapshot(), changes...))
	}
	e.unlockAndFlush()
}

func (e *Engine[T]) renumber(from, to int) {
	for i := from; i < to; i++ {
		e.children[e.order[i]].position = i
	}
}

func (e *Engine[T]) sizes() []int {
	sizes := make([]int, len(e.order))
	for i, h := range e.order {
		sizes[i] = len(e.children[h].latest)
	}
	return sizes
}

// offset scans the children before pos; it is never cached because any
// child may change size between events.
func (e *Engine[T]) offset(pos int) int {
	sum := 0
	for _, h := range e.order[:pos] {
		sum += len(e.children[h].latest)
	}
	return sum
}

func (e *Engine[T]) snapshot() []T {
	total := e.offset(len(e.order))
	out := make([]T, 0, total)
	for _, h := range e.order {
		out = append(out, e.children[h].latest...)
	}
	return out
}

// emit stages u on the output. Callers hold e.mu and flush after unlocking.
func (e *Engine[T]) emit(u list.Update[T]) {
	if e.validate {
		if err := list.Validate(e.size, u); err != nil {
			e.fail("composite update failed validation",
				zap.Error(err),
				zap.Int("previous_size", e.size),
				zap.Int("size", len(u.List)),
				zap.Stringers("changes", u.Changes),
			)
		}
	}
	e.size = len(u.List)
	e.out.Stage(u)
}
