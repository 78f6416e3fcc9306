// Package cache memoizes index to value lookups over an addressable sequence.
//
// Values live in two tiers. The strong tier retains them unconditionally; the
// weak tier holds weak pointers that let the garbage collector reclaim a value
// once nothing else references it. A lookup tries the strong tier, then the
// weak tier (promoting a live value back to the strong tier), and finally the
// backing sequence, whose result is stored in both tiers.
//
// # Concurrency
//
// Each tier has its own lock and no operation holds both. Two goroutines
// missing on the same index may both call the backing accessor; the last
// write wins. The accessor must therefore be a pure function of the index.
//
// # Sub-ranges
//
// Subrange returns a view over part of the sequence that shares the parent's
// Storage, so a value resolved through one view is a hit for every other.
//
// # Usage
//
//	entries := cache.New[Entry](cache.Func[Entry]{
//	    Length: func() int { return len(keys) },
//	    Get:    func(i int) (Entry, error) { return stat(keys[i]) },
//	})
//	e, err := entries.At(5)
//	tail, err := entries.Subrange(5, 10)
package cache
