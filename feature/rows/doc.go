// Package rows persists ordered lists of keys in a relational table.
//
// Every list is a set of rows in list_rows, ordered by position. A Table
// loads one list, applies insertions and removals inside a transaction that
// renumbers the following rows, and publishes each committed mutation as an
// Update, so a Table can be a child of a catalog composite.
//
// # Schema
//
//	list_rows(id, list, position, key)
//
// Migrate creates the table; Table.Check reports required columns that an
// existing table lacks.
package rows
