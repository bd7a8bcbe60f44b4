// Package notebook owns the canonical list of command tabs and the favorites
// pinned from it.
//
// A Registry holds the ordered entries and persists them through a
// store.Store; a Favorites manager holds up to MaxFavorites pinned entries
// and the slot bindings derived from them. Deleting an entry cascades into
// the favorites before the tab list is written, so every favorite always
// references a live entry.
//
// Both types publish a state event after each successful write. Errors are
// reported with the sentinel values in errors.go and should be matched with
// errors.Is.
package notebook
