package app

import (
	"errors"
	"fmt"

	"github.com/five82/termnote/internal/notebook"
	"github.com/five82/termnote/internal/session"
	"github.com/five82/termnote/internal/store"
)

// Level is the severity of a Toast.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Toast is the user-facing outcome of a command.
type Toast struct {
	Level Level
	Text  string
}

// Failed reports whether the command did not do what was asked.
func (t Toast) Failed() bool {
	return t.Level != LevelInfo
}

func (t Toast) String() string {
	return t.Text
}

func info(format string, args ...any) Toast {
	return Toast{Level: LevelInfo, Text: fmt.Sprintf(format, args...)}
}

func warning(format string, args ...any) Toast {
	return Toast{Level: LevelWarning, Text: fmt.Sprintf(format, args...)}
}

func failure(format string, args ...any) Toast {
	return Toast{Level: LevelError, Text: fmt.Sprintf(format, args...)}
}

// toastForError maps a domain error onto the toast shown for it.
func toastForError(err error) Toast {
	switch {
	case errors.Is(err, notebook.ErrValidation):
		return failure("Tab name cannot be empty.")
	case errors.Is(err, notebook.ErrImportFormat):
		return failure("File format incorrect, cannot import.")
	case errors.Is(err, notebook.ErrCapacity):
		return warning("Favorites can have up to %d tabs only.", notebook.MaxFavorites)
	case errors.Is(err, session.ErrLocked):
		return warning("Terminal is locked. Unlock it to run commands.")
	case errors.Is(err, notebook.ErrDuplicate):
		return info("This tab is already in favorites.")
	case errors.Is(err, store.ErrConflict):
		return warning("Changed in another window and reloaded. Try again.")
	case errors.Is(err, notebook.ErrNotFound):
		return warning("Tab information is incomplete, cannot execute command.")
	default:
		return failure("%s", capitalize(err.Error()))
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
