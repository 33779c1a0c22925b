// Package history records finished cut detection runs in SQLite.
//
// Each analysis row stores the request parameters, the source metadata, the
// outcome and the elapsed time; detected bookmarks live in a child table in
// stream order. Records are written once after the terminal event and never
// updated.
package history
