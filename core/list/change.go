package list

import "fmt"

// ChangeType identifies the kind of structural edit described by a Change.
type ChangeType uint8

const (
	// ChangeInserted adds an element at Change.To.
	ChangeInserted ChangeType = iota + 1
	// ChangeRemoved drops the element at Change.From.
	ChangeRemoved
	// ChangeMoved relocates the element at Change.From to Change.To.
	ChangeMoved
	// ChangeReloaded replaces the whole list.
	ChangeReloaded
)

// String returns the name of the change type.
func (t ChangeType) String() string {
	switch t {
	case ChangeInserted:
		return "inserted"
	case ChangeRemoved:
		return "removed"
	case ChangeMoved:
		return "moved"
	case ChangeReloaded:
		return "reloaded"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Change is one structural edit of a list, described by index.
// Inserted only uses To, Removed only uses From and Reloaded uses neither.
type Change struct {
	Type ChangeType `json:"type"`
	From int        `json:"from"`
	To   int        `json:"to"`
}

// Inserted returns a change inserting an element at index at.
func Inserted(at int) Change {
	return Change{Type: ChangeInserted, From: -1, To: at}
}

// Removed returns a change removing the element at index at.
func Removed(at int) Change {
	return Change{Type: ChangeRemoved, From: at, To: -1}
}

// Moved returns a change moving the element at from to index to.
func Moved(from, to int) Change {
	return Change{Type: ChangeMoved, From: from, To: to}
}

// Reloaded returns a change signaling a full replacement.
func Reloaded() Change {
	return Change{Type: ChangeReloaded, From: -1, To: -1}
}

func (c Change) String() string {
	switch c.Type {
	case ChangeInserted:
		return fmt.Sprintf("Inserted(%d)", c.To)
	case ChangeRemoved:
		return fmt.Sprintf("Removed(%d)", c.From)
	case ChangeMoved:
		return fmt.Sprintf("Moved(%d,%d)", c.From, c.To)
	case ChangeReloaded:
		return "Reloaded"
	default:
		return c.Type.String()
	}
}

// Update is a snapshot paired with the changes that produced it.
// Snapshots are shared between consumers and must not be modified.
type Update[T any] struct {
	List    []T      `json:"list"`
	Changes []Change `json:"changes"`
}

// NewUpdate creates an Update from a snapshot and its changes.
func NewUpdate[T any](snapshot []T, changes ...Change) Update[T] {
	return Update[T]{List: snapshot, Changes: changes}
}

// Reload creates an Update replacing everything with snapshot.
func Reload[T any](snapshot []T) Update[T] {
	return Update[T]{List: snapshot, Changes: []Change{Reloaded()}}
}

// IsReload reports whether the update carries a Reloaded change.
func (u Update[T]) IsReload() bool {
	for _, c := range u.Changes {
		if c.Type == ChangeReloaded {
			return true
		}
	}
	return false
}
