package notebook

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates a label that is empty after trimming.
	ErrValidation = errors.New("tab name cannot be empty")
	// ErrCapacity indicates the favorites list is full.
	ErrCapacity = fmt.Errorf("favorites can have up to %d tabs only", MaxFavorites)
	// ErrDuplicate indicates the tab is already a favorite.
	ErrDuplicate = errors.New("this tab is already in favorites")
	// ErrImportFormat indicates an import document with the wrong type or shape.
	ErrImportFormat = errors.New("file format incorrect, cannot import")
	// ErrIO indicates the durable store or a file could not be read or written.
	ErrIO = errors.New("i/o failure")
	// ErrNotFound indicates a tab id that is not in the registry.
	ErrNotFound = errors.New("tab not found")
)

// IOError wraps err so that it matches both ErrIO and err.
func IOError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}
