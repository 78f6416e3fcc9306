// Package list defines the change model shared by every observable list.
//
// An Update pairs a snapshot with the ordered changes that turn the
// previously delivered snapshot into it. Changes carry indices only; the
// values live in the snapshot.
//
// # Changes
//
//   - Inserted(at): an element appeared at index at.
//   - Removed(at): the element at index at disappeared.
//   - Moved(from, to): the element at from was removed and reinserted at to.
//   - Reloaded(): discard everything, the snapshot is authoritative.
//
// Indices are interpreted sequentially: each change is applied against the
// list produced by the changes before it. A Reloaded change is always the only
// entry of its Update.
//
// # Validation
//
// Validate and Replay check an Update against the previous snapshot. They are
// meant for debug assertions and tests; producers never pay for them in the
// normal path.
package list
