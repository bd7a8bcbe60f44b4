package notebook

import (
	"errors"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/five82/termnote/internal/state"
	"github.com/five82/termnote/internal/store"
)

// Favorites is the bounded, ordered list of pinned entries and the slot
// bindings derived from it.
//
// The slots are recomputed after every change, so a slot never points at a
// favorite that has been removed.
type Favorites struct {
	mu    sync.Mutex
	items []Favorite
	slots [SlotCount]Slot

	store    store.Store
	notifier Notifier
	log      *zap.Logger
}

// NewFavorites returns an empty favorites manager. Call Load to read the
// persisted list.
func NewFavorites(opts Options) *Favorites {
	opts = opts.withDefaults()
	f := &Favorites{
		store:    opts.Store,
		notifier: opts.Notifier,
		log:      opts.Logger.Named("favorites"),
	}
	f.rederive()
	return f
}

// Load reads the persisted favorites, dropping any whose id is not live,
// duplicates, and anything past MaxFavorites. An undecodable list loads as
// empty. The cleaned list is written back when something was dropped.
func (f *Favorites) Load(live func(id string) bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var saved []Favorite
	_, err := f.store.Get(store.KeyFavorites, &saved)
	corrupt := errors.Is(err, store.ErrCorrupt)
	switch {
	case corrupt:
		f.log.Warn("discarding unreadable favorites", zap.Error(err))
		saved = nil
	case err != nil:
		return IOError("load favorites", err)
	}

	seen := make(map[string]bool, len(saved))
	kept := make([]Favorite, 0, len(saved))
	for _, fav := range saved {
		if fav.ID == "" || seen[fav.ID] || len(kept) == MaxFavorites {
			continue
		}
		if live != nil && !live(fav.ID) {
			continue
		}
		seen[fav.ID] = true
		kept = append(kept, fav)
	}
	if corrupt || len(kept) != len(saved) {
		if err := f.store.Set(store.KeyFavorites, kept); err != nil {
			return IOError("save favorites", err)
		}
		f.log.Info("dropped stale favorites", zap.Int("loaded", len(saved)), zap.Int("kept", len(kept)))
	}
	f.items = kept
	f.rederive()
	return nil
}

// List returns the favorites in insertion order.
func (f *Favorites) List() []Favorite {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.items) == 0 {
		return []Favorite{}
	}
	return cloneFavorites(f.items)
}

// Len returns the number of favorites.
func (f *Favorites) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// HasFavorites reports whether at least one favorite exists.
func (f *Favorites) HasFavorites() bool {
	return f.Len() > 0
}

// Contains reports whether id is a favorite.
func (f *Favorites) Contains(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.indexOf(id) >= 0
}

// Add pins entry, copying its current label.
func (f *Favorites) Add(entry Entry) error {
	if entry.ID == "" {
		return ErrNotFound
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.items) >= MaxFavorites {
		return ErrCapacity
	}
	if f.indexOf(entry.ID) >= 0 {
		return ErrDuplicate
	}
	next := append(cloneFavorites(f.items), Favorite{Label: entry.Label, ID: entry.ID})
	if err := f.commit(next); err != nil {
		return err
	}
	f.log.Info("favorite added", zap.String("id", entry.ID))
	return nil
}

// Remove unpins id. Absent ids are no-ops.
func (f *Favorites) Remove(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexOf(id)
	if i < 0 {
		return nil
	}
	next := make([]Favorite, 0, len(f.items)-1)
	next = append(next, f.items[:i]...)
	next = append(next, f.items[i+1:]...)
	if err := f.commit(next); err != nil {
		return err
	}
	f.log.Info("favorite removed", zap.String("id", id))
	return nil
}

// Clear removes every favorite.
func (f *Favorites) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.items) == 0 {
		return nil
	}
	return f.commit([]Favorite{})
}

// restore replaces the list with prev, which must already satisfy the list's
// invariants. Unchanged lists are not rewritten.
func (f *Favorites) restore(prev []Favorite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if slices.Equal(prev, f.items) {
		return nil
	}
	if err := f.commit(cloneFavorites(prev)); err != nil {
		return err
	}
	f.log.Info("favorites restored", zap.Int("count", len(prev)))
	return nil
}

// Slots returns the SlotCount bindings. Slot i is bound to the i-th
// favorite when there is one.
func (f *Favorites) Slots() [SlotCount]Slot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slots
}

// Slot returns slot i and whether it is bound (and so should be shown).
func (f *Favorites) Slot(i int) (Slot, bool) {
	if i < 0 || i >= SlotCount {
		return Slot{Index: i}, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.slots[i]
	return s, s.Bound
}

func (f *Favorites) commit(next []Favorite) error {
	if err := f.store.Set(store.KeyFavorites, next); err != nil {
		return IOError("save favorites", err)
	}
	f.items = next
	f.rederive()
	f.notifier.Notify(state.KindFavorites)
	return nil
}

func (f *Favorites) rederive() {
	for i := range f.slots {
		if i < len(f.items) {
			f.slots[i] = Slot{Index: i, Label: f.items[i].Label, ID: f.items[i].ID, Bound: true}
			continue
		}
		f.slots[i] = Slot{Index: i}
	}
}

func (f *Favorites) indexOf(id string) int {
	for i, fav := range f.items {
		if fav.ID == id {
			return i
		}
	}
	return -1
}
