// Package store persists the notebook's durable state: the tab list, the
// favorites list and the execution lock.
package store

import "errors"

var (
	// ErrCorrupt marks a persisted value (or the whole document) that cannot
	// be decoded. Callers treat it as absent.
	ErrCorrupt = errors.New("corrupt state")
	// ErrConflict marks a write refused because another process changed the
	// same key since this process last read or wrote it.
	ErrConflict = errors.New("state changed by another process")
)

// Logical keys held by a Store.
const (
	KeyTabs      = "tabs"
	KeyFavorites = "favorites"
	KeyLocked    = "locked"
)

// Store is a durable key/value mapping. Values are JSON-encodable.
//
// There is no transaction spanning keys; callers order their writes when
// cross-key consistency matters.
type Store interface {
	// Get decodes the value stored under key into v. It reports false when
	// the key is absent and wraps ErrCorrupt when the value cannot be
	// decoded.
	Get(key string, v any) (bool, error)
	// Set replaces the value stored under key.
	Set(key string, v any) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}
