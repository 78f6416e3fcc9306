// Package replay runs scripted edits against a composite list and records
// every update it emits.
//
// A script names the initial children and a sequence of steps. Child steps
// address children by their position in the parent list. The recorded
// updates are checked against the previous snapshot as they arrive, so a
// replay doubles as a consistency check of the composite's diff stream.
package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"livelist/core/concat"
	"livelist/core/list"
	"livelist/core/stream"

	"go.uber.org/zap"
)

// Step operations.
const (
	OpInsertChild = "insert_child"
	OpRemoveChild = "remove_child"
	OpMoveChild   = "move_child"
	OpReload      = "reload"
	OpInsert      = "insert"
	OpRemove      = "remove"
	OpMove        = "move"
	OpSet         = "set"
	OpReplace     = "replace"
)

var ErrUnknownOp = errors.New("unknown operation")

// Script is a replay input.
type Script struct {
	Children [][]string `json:"children"`
	Steps    []Step     `json:"steps"`
}

// Step is one edit. Which fields apply depends on Op.
type Step struct {
	Op       string     `json:"op"`
	Child    int        `json:"child,omitempty"`
	Position int        `json:"position,omitempty"`
	From     int        `json:"from,omitempty"`
	To       int        `json:"to,omitempty"`
	Key      string     `json:"key,omitempty"`
	Items    []string   `json:"items,omitempty"`
	Children [][]string `json:"children,omitempty"`
}

// Record is one composite update as emitted.
type Record struct {
	Step    int           `json:"step"`
	List    []string      `json:"list"`
	Changes []list.Change `json:"changes"`
}

// Decode reads a script from r.
func Decode(r io.Reader) (*Script, error) {
	var s Script
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode script: %w", err)
	}
	return &s, nil
}

// Run applies script to a fresh composite and returns every update in
// emission order. Step 0 is the initial Reloaded.
func Run(script *Script, opts ...concat.Option) ([]Record, error) {
	children := make([]*stream.List[string], len(script.Children))
	sources := make([]stream.Observable[string], len(script.Children))
	for i, items := range script.Children {
		children[i] = stream.NewList(items...)
		sources[i] = children[i]
	}
	root := stream.NewList(sources...)
	composite := concat.New[string](root, opts...)

	var (
		records []Record
		current []string
		failure error
		step    int
	)
	sub := composite.Subscribe(func(u list.Update[string]) {
		next, err := list.Replay(current, u)
		if err != nil && failure == nil {
			failure = fmt.Errorf("step %d: %w", step, err)
		}
		current = next
		records = append(records, Record{Step: step, List: u.List, Changes: u.Changes})
	})
	defer sub.Unsubscribe()

	for i, st := range script.Steps {
		step = i + 1
		var err error
		children, err = apply(root, children, st)
		if err != nil {
			return records, fmt.Errorf("step %d (%s): %w", step, st.Op, err)
		}
		if failure != nil {
			return records, failure
		}
	}
	return records, failure
}

func apply(root *stream.List[stream.Observable[string]], children []*stream.List[string], st Step) ([]*stream.List[string], error) {
	child := func() (*stream.List[string], error) {
		if st.Child < 0 || st.Child >= len(children) {
			return nil, fmt.Errorf("%w: child %d of %d", list.ErrOutOfRange, st.Child, len(children))
		}
		return children[st.Child], nil
	}

	switch st.Op {
	case OpInsertChild:
		c := stream.NewList(st.Items...)
		if err := root.Insert(st.Position, c); err != nil {
			return children, err
		}
		return append(children[:st.Position:st.Position], append([]*stream.List[string]{c}, children[st.Position:]...)...), nil
	case OpRemoveChild:
		if err := root.Remove(st.Position); err != nil {
			return children, err
		}
		return append(children[:st.Position:st.Position], children[st.Position+1:]...), nil
	case OpMoveChild:
		if err := root.Move(st.From, st.To); err != nil {
			return children, err
		}
		c := children[st.From]
		rest := append(children[:st.From:st.From], children[st.From+1:]...)
		return append(rest[:st.To:st.To], append([]*stream.List[string]{c}, rest[st.To:]...)...), nil
	case OpReload:
		next := make([]*stream.List[string], len(st.Children))
		sources := make([]stream.Observable[string], len(st.Children))
		for i, items := range st.Children {
			next[i] = stream.NewList(items...)
			sources[i] = next[i]
		}
		root.Replace(sources...)
		return next, nil
	}

	c, err := child()
	if err != nil {
		return children, err
	}
	switch st.Op {
	case OpInsert:
		err = c.Insert(st.Position, st.Key)
	case OpRemove:
		err = c.Remove(st.Position)
	case OpMove:
		err = c.Move(st.From, st.To)
	case OpSet:
		err = c.Set(st.Position, st.Key)
	case OpReplace:
		c.Replace(st.Items...)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownOp, st.Op)
	}
	return children, err
}

// Write encodes records to w as JSON lines.
func Write(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	return nil
}

// Log reports records through logger at debug level.
func Log(logger *zap.Logger, records []Record) {
	for _, r := range records {
		logger.Debug("Update",
			zap.Int("step", r.Step),
			zap.Int("size", len(r.List)),
			zap.Stringers("changes", r.Changes),
		)
	}
}
