package list

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedChange is returned when a change does not fit the list it is applied to.
	ErrMalformedChange = errors.New("malformed change")
	// ErrOutOfRange is returned for index access beyond the current bounds.
	ErrOutOfRange = errors.New("index out of range")
)

// Validate checks that applying u.Changes to a list of prevLen elements is
// well-formed and yields a list of len(u.List) elements.
func Validate[T any](prevLen int, u Update[T]) error {
	_, err := walk(prevLen, len(u.List), u.Changes)
	return err
}

// Replay applies u.Changes to prev. Elements that survive are carried over
// from prev; inserted slots are taken from u.List at their final position.
// For a well-behaved producer the result equals u.List.
func Replay[T any](prev []T, u Update[T]) ([]T, error) {
	slots, err := walk(len(prev), len(u.List), u.Changes)
	if err != nil {
		return nil, err
	}
	if slots == nil {
		out := make([]T, len(u.List))
		copy(out, u.List)
		return out, nil
	}

	out := make([]T, len(slots))
	for i, s := range slots {
		if s >= 0 {
			out[i] = prev[s]
		} else {
			out[i] = u.List[i]
		}
	}
	return out, nil
}

// InsertTargets returns, for every change in changes, the index in the final
// list where the element inserted by that change ends up. Entries for changes
// that are not insertions, or whose element is removed again later in the
// batch, are -1.
func InsertTargets(prevLen int, changes []Change) ([]int, error) {
	slots, err := walk(prevLen, -1, changes)
	if err != nil {
		return nil, err
	}

	targets := make([]int, len(changes))
	for i := range targets {
		targets[i] = -1
	}
	for pos, s := range slots {
		if s < 0 {
			targets[-s-1] = pos
		}
	}
	return targets, nil
}

// walk simulates changes over a list of prevLen elements. Each resulting slot
// holds the previous index of a surviving element, or -(k+1) for an element
// inserted by changes[k]. A nil result with no error means the batch is a
// reload. finalLen < 0 skips the final length check.
func walk(prevLen, finalLen int, changes []Change) ([]int, error) {
	for i, c := range changes {
		if c.Type == ChangeReloaded {
			if len(changes) != 1 {
				return nil, fmt.Errorf("%w: reloaded at %d in a batch of %d", ErrMalformedChange, i, len(changes))
			}
			return nil, nil
		}
	}

	slots := make([]int, prevLen)
	for i := range slots {
		slots[i] = i
	}

	for k, c := range changes {
		n := len(slots)
		switch c.Type {
		case ChangeInserted:
			if c.To < 0 || c.To > n {
				return nil, fmt.Errorf("%w: %s on list of %d", ErrMalformedChange, c, n)
			}
			slots = append(slots, 0)
			copy(slots[c.To+1:], slots[c.To:])
			slots[c.To] = -(k + 1)
		case ChangeRemoved:
			if c.From < 0 || c.From >= n {
				return nil, fmt.Errorf("%w: %s on list of %d", ErrMalformedChange, c, n)
			}
			slots = append(slots[:c.From], slots[c.From+1:]...)
		case ChangeMoved:
			if c.From < 0 || c.From >= n || c.To < 0 || c.To >= n {
				return nil, fmt.Errorf("%w: %s on list of %d", ErrMalformedChange, c, n)
			}
			s := slots[c.From]
			slots = append(slots[:c.From], slots[c.From+1:]...)
			slots = append(slots, 0)
			copy(slots[c.To+1:], slots[c.To:])
			slots[c.To] = s
		default:
			return nil, fmt.Errorf("%w: unknown change type %d", ErrMalformedChange, c.Type)
		}
	}

	if finalLen >= 0 && len(slots) != finalLen {
		return nil, fmt.Errorf("%w: changes yield %d elements, snapshot has %d", ErrMalformedChange, len(slots), finalLen)
	}
	return slots, nil
}
