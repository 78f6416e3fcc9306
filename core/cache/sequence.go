package cache

import (
	"fmt"

	"livelist/core/list"
)

// ErrOutOfRange is returned for reads outside the sequence bounds.
var ErrOutOfRange = list.ErrOutOfRange

// Sequence is anything with a length and an indexed accessor.
type Sequence[T any] interface {
	Len() int
	At(index int) (T, error)
}

// Slice adapts a slice to Sequence.
type Slice[T any] []T

func (s Slice[T]) Len() int {
	return len(s)
}

func (s Slice[T]) At(index int) (T, error) {
	if index < 0 || index >= len(s) {
		var zero T
		return zero, fmt.Errorf("%w: %d not in [0,%d)", ErrOutOfRange, index, len(s))
	}
	return s[index], nil
}

// Func adapts a length function and an accessor to Sequence.
type Func[T any] struct {
	Length func() int
	Get    func(index int) (T, error)
}

func (f Func[T]) Len() int {
	return f.Length()
}

func (f Func[T]) At(index int) (T, error) {
	return f.Get(index)
}
