package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/five82/termnote/internal/notebook"
	"github.com/five82/termnote/internal/state"
	"github.com/five82/termnote/internal/store"
)

// AddTab creates a tab running label.
func (nb *Notebook) AddTab(label string) Toast {
	entry, err := nb.registry.Add(label)
	if err != nil {
		return nb.fail("add tab", err)
	}
	return info("Tab added: %s", entry.Label)
}

// RenameTab changes the command text of a tab.
func (nb *Notebook) RenameTab(id, label string) Toast {
	if !nb.registry.Has(id) {
		return toastForError(notebook.ErrNotFound)
	}
	if err := nb.registry.Rename(id, label); err != nil {
		return nb.fail("rename tab", err)
	}
	return info("Tab renamed: %s", label)
}

// DeleteTab removes a tab, unpins it and closes its terminal.
func (nb *Notebook) DeleteTab(id string) Toast {
	if !nb.registry.Has(id) {
		return toastForError(notebook.ErrNotFound)
	}
	if err := nb.registry.Delete(id); err != nil {
		return nb.fail("delete tab", err)
	}
	nb.sessions.Dispose(id)
	return info("Tab deleted")
}

// CopyLabel puts a tab's command text on the clipboard.
func (nb *Notebook) CopyLabel(id string) Toast {
	entry, ok := nb.registry.Get(id)
	if !ok || !notebook.ValidLabel(entry.Label) {
		return warning("No command found to copy")
	}
	if err := nb.clipboard.WriteAll(entry.Label); err != nil {
		nb.log.Warn("clipboard write failed", zap.Error(err))
		return failure("Copy failed: %v", err)
	}
	return info("Command copied: %s", entry.Label)
}

// AddFavorite pins a tab.
func (nb *Notebook) AddFavorite(id string) Toast {
	entry, ok := nb.registry.Get(id)
	if !ok {
		return toastForError(notebook.ErrNotFound)
	}
	if err := nb.favorites.Add(entry); err != nil {
		return nb.fail("add favorite", err)
	}
	return info("Added to favorites")
}

// RemoveFavorite unpins a tab.
func (nb *Notebook) RemoveFavorite(id string) Toast {
	if !nb.favorites.HasFavorites() {
		return info("Favorites is empty")
	}
	var label string
	for _, fav := range nb.favorites.List() {
		if fav.ID == id {
			label = fav.Label
			break
		}
	}
	if label == "" {
		return warning("Not a favorite")
	}
	if err := nb.favorites.Remove(id); err != nil {
		return nb.fail("remove favorite", err)
	}
	return info("Favorite deleted: %s", label)
}

// RunTab runs a tab in a fresh terminal.
func (nb *Notebook) RunTab(id string) Toast {
	entry, ok := nb.registry.Get(id)
	if !ok {
		return toastForError(notebook.ErrNotFound)
	}
	return nb.run(entry.ID, entry.Label)
}

// RunFavorite runs a favorite using the label it was pinned with.
func (nb *Notebook) RunFavorite(id string) Toast {
	if !nb.favorites.HasFavorites() {
		return info("Favorites is empty")
	}
	for _, fav := range nb.favorites.List() {
		if fav.ID == id {
			return nb.run(fav.ID, fav.Label)
		}
	}
	return toastForError(notebook.ErrNotFound)
}

// RunSlot runs the favorite bound to slot i (zero based).
func (nb *Notebook) RunSlot(i int) Toast {
	slot, bound := nb.favorites.Slot(i)
	if !bound {
		return warning("Favorite slot %d is empty", i+1)
	}
	return nb.run(slot.ID, slot.Label)
}

func (nb *Notebook) run(id, label string) Toast {
	if id == "" || label == "" {
		return toastForError(notebook.ErrNotFound)
	}
	if err := nb.sessions.OpenAndRun(id, label); err != nil {
		return nb.fail("run command", err)
	}
	return info("Running: %s", label)
}

// ExportTabs writes the export document to path.
func (nb *Notebook) ExportTabs(path string) Toast {
	path = strings.TrimSpace(path)
	if path == "" {
		return warning("Export path is required")
	}
	data, err := nb.registry.ExportSnapshot().Encode()
	if err != nil {
		return nb.fail("export tabs", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nb.fail("export tabs", notebook.IOError("write export", err))
	}
	nb.log.Info("tabs exported", zap.String("path", path))
	return info("Tab commands exported!")
}

// ImportTabs merges the tabs in the export document at path.
func (nb *Notebook) ImportTabs(path string) Toast {
	path = strings.TrimSpace(path)
	if path == "" {
		return warning("Import path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		nb.log.Warn("import read failed", zap.String("path", path), zap.Error(err))
		return failure("Import failed: %v", err)
	}
	tabs, err := notebook.ParseDocument(data)
	if err != nil {
		return nb.fail("import tabs", err)
	}
	n, err := nb.registry.ImportMerge(tabs)
	if err != nil {
		return failure("Import failed: %v", err)
	}
	if n == 0 {
		return info("No new tab commands to import")
	}
	return info("Tab commands imported! (%d new)", n)
}

// SetLocked persists the lock flag.
func (nb *Notebook) SetLocked(locked bool) Toast {
	nb.lockMu.Lock()
	if err := nb.store.Set(store.KeyLocked, locked); err != nil {
		nb.lockMu.Unlock()
		return nb.fail("set lock", notebook.IOError("save lock", err))
	}
	nb.locked = locked
	nb.lockMu.Unlock()

	nb.notifier.Notify(state.KindLock)
	if locked {
		return info("Terminal locked")
	}
	return info("Terminal unlocked")
}

// ToggleLock flips the lock flag.
func (nb *Notebook) ToggleLock() Toast {
	return nb.SetLocked(!nb.Locked())
}

// Reset restores the default tabs and clears favorites.
func (nb *Notebook) Reset() Toast {
	if err := nb.registry.Reset(); err != nil {
		return nb.fail("reset", err)
	}
	return info("All data cleared, default tabs restored")
}

func (nb *Notebook) fail(op string, err error) Toast {
	toast := toastForError(err)
	if toast.Level == LevelError && !errors.Is(err, notebook.ErrValidation) && !errors.Is(err, notebook.ErrImportFormat) {
		nb.log.Error(op+" failed", zap.Error(err))
		toast.Text = fmt.Sprintf("%s failed: %v", capitalize(op), err)
	} else {
		nb.log.Info(op+" rejected", zap.Error(err))
	}
	return toast
}
