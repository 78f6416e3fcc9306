package concat

import "livelist/core/list"

// Translate maps a child-local change into composite index space.
// offsetBefore positions indices that refer to the list before the change
// (removal and move sources); offsetAfter positions indices that refer to the
// list after it (insertion and move targets).
func Translate(offsetBefore, offsetAfter int, c list.Change) list.Change {
	switch c.Type {
	case list.ChangeInserted:
		return list.Inserted(c.To + offsetAfter)
	case list.ChangeRemoved:
		return list.Removed(c.From + offsetBefore)
	case list.ChangeMoved:
		return list.Moved(c.From+offsetBefore, c.To+offsetAfter)
	default:
		return c
	}
}

// TranslateAll translates every change. A Reloaded anywhere in changes cannot
// be expressed incrementally and collapses the result to a single Reloaded.
func TranslateAll(offsetBefore, offsetAfter int, changes []list.Change) []list.Change {
	out := make([]list.Change, 0, len(changes))
	for _, c := range changes {
		if c.Type == list.ChangeReloaded {
			return []list.Change{list.Reloaded()}
		}
		out = append(out, Translate(offsetBefore, offsetAfter, c))
	}
	return out
}

// Offsets returns the starting composite index of every child given their sizes.
func Offsets(sizes []int) []int {
	offsets := make([]int, len(sizes))
	sum := 0
	for i, n := range sizes {
		offsets[i] = sum
		sum += n
	}
	return offsets
}

// OffsetOf returns the starting composite index of the child at position pos.
func OffsetOf(sizes []int, pos int) int {
	sum := 0
	for i := 0; i < pos && i < len(sizes); i++ {
		sum += sizes[i]
	}
	return sum
}
