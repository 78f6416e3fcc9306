// Package concat builds a composite list out of a dynamic list of lists.
//
// The Engine tracks one subscription per child, translates each child's
// local changes into composite index space and keeps the composite diff
// stream consistent while children are attached, detached, moved or
// reloaded. Concat shares one Engine among any number of consumers with
// reference counting.
//
// # Offsets
//
// The offset of a child is the composite index of its first element. Offsets
// are recomputed by a linear scan over the children on every event, never
// cached: any child may change size at any time.
//
// # Structural changes
//
//	attach at p   Inserted(offset+i) for each element, ascending
//	detach at p   Removed(offset) once per element
//	move p -> q   Moved(from+i, to+i) per element, tail first when moving forward
//	reload        a single Reloaded
//
// # Usage
//
//	lists := stream.NewList[stream.Observable[string]](
//	    stream.NewList("a", "b"),
//	    stream.NewList("c"),
//	)
//	composite := concat.New(lists, concat.WithLogger(logg))
//	sub := composite.Subscribe(func(u list.Update[string]) {
//	    fmt.Println(u.List, u.Changes)
//	})
//	defer sub.Unsubscribe()
package concat
