// Package catalog serves a live composite of member lists over HTTP.
//
// The catalog root is an observable list of children. Each child is one of:
//
//   - static: an in-memory list edited through the API
//   - prefix: the sorted keys under an object storage prefix (feature/objects)
//   - table: a list persisted in the database (feature/rows)
//
// The children are concatenated by a concat.Concat and followed by a
// view.View. Reading an entry materializes the composite element (an object
// stat when storage is configured) through the view's per-generation tiered
// cache; Run periodically releases the strong tier so idle entries can be
// reclaimed.
//
// # Routes
//
//	GET    /catalog                          composite snapshot and generation
//	GET    /catalog/children                 member lists
//	POST   /catalog/children                 attach a child
//	PUT    /catalog/children                 replace all children
//	DELETE /catalog/children/:pos            detach a child
//	POST   /catalog/children/:from/move/:to  move a child
//	POST   /catalog/children/:id/items       insert a key into a child
//	DELETE /catalog/children/:id/items/:pos  remove a key from a child
//	GET    /catalog/entries/:index           materialized element
//	GET    /catalog/stats                    entry cache counters
//	POST   /catalog/refresh                  relist prefixes, reload tables
package catalog
