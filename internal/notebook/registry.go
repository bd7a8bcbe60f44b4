package notebook

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/five82/termnote/internal/state"
	"github.com/five82/termnote/internal/store"
)

const maxIDAttempts = 8

// Notifier receives a change event after every durable write.
type Notifier interface {
	Notify(kind state.Kind)
}

type nopNotifier struct{}

func (nopNotifier) Notify(state.Kind) {}

// Options configure a Registry or Favorites manager.
type Options struct {
	Store    store.Store
	Notifier Notifier
	Logger   *zap.Logger
	// NewID overrides id generation. Defaults to a ULID generator.
	NewID func() string
}

func (o Options) withDefaults() Options {
	if o.Store == nil {
		o.Store = store.NewMemory()
	}
	if o.Notifier == nil {
		o.Notifier = nopNotifier{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.NewID == nil {
		o.NewID = NewIDGenerator().New
	}
	return o
}

// Registry is the authoritative ordered list of command entries.
//
// Every mutating method holds the registry lock from validation through the
// durable write and the change notification. The in-memory list is replaced
// only after the store accepted the new list, so a failed write leaves the
// registry as it was.
type Registry struct {
	mu        sync.Mutex
	entries   []Entry
	favorites *Favorites

	store    store.Store
	notifier Notifier
	newID    func() string
	log      *zap.Logger
}

// NewRegistry returns an empty registry. Call Load to read persisted tabs.
func NewRegistry(opts Options) *Registry {
	opts = opts.withDefaults()
	return &Registry{
		store:    opts.Store,
		notifier: opts.Notifier,
		newID:    opts.NewID,
		log:      opts.Logger.Named("registry"),
	}
}

// AttachFavorites sets the favorites manager that Delete cascades into.
func (r *Registry) AttachFavorites(f *Favorites) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.favorites = f
}

// Load reads the persisted tab list. When none exists, or it cannot be
// decoded, the registry is seeded with DefaultTabs, which are persisted
// immediately.
func (r *Registry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var saved []Entry
	ok, err := r.store.Get(store.KeyTabs, &saved)
	switch {
	case errors.Is(err, store.ErrCorrupt):
		r.log.Warn("discarding unreadable tabs", zap.Error(err))
		ok = false
	case err != nil:
		return IOError("load tabs", err)
	}
	if !ok {
		seeded := cloneEntries(DefaultTabs)
		if err := r.store.Set(store.KeyTabs, seeded); err != nil {
			return IOError("seed tabs", err)
		}
		r.entries = seeded
		r.log.Info("seeded default tabs", zap.Int("count", len(seeded)))
		return nil
	}

	entries, repaired := r.repair(saved)
	if repaired {
		if err := r.store.Set(store.KeyTabs, entries); err != nil {
			return IOError("repair tabs", err)
		}
		r.log.Warn("repaired persisted tabs", zap.Int("loaded", len(saved)), zap.Int("kept", len(entries)))
	}
	r.entries = entries
	r.log.Debug("loaded tabs", zap.Int("count", len(entries)))
	return nil
}

// repair drops blank labels and duplicate ids and gives id-less entries a
// fresh id.
func (r *Registry) repair(saved []Entry) ([]Entry, bool) {
	seen := make(map[string]bool, len(saved))
	out := make([]Entry, 0, len(saved))
	repaired := false
	for _, e := range saved {
		if !ValidLabel(e.Label) || seen[e.ID] {
			repaired = true
			continue
		}
		if e.ID == "" {
			id, err := r.freshID(seen)
			if err != nil {
				repaired = true
				continue
			}
			e.ID = id
			repaired = true
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	return out, repaired
}

// List returns the entries in insertion order.
func (r *Registry) List() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return []Entry{}
	}
	return cloneEntries(r.entries)
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Get returns the entry with the given id.
func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexOf(id); i >= 0 {
		return r.entries[i], true
	}
	return Entry{}, false
}

// Has reports whether id is a live entry.
func (r *Registry) Has(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// IDs returns the set of live ids.
func (r *Registry) IDs() map[string]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.idSet()
}

// Add appends a new entry with a freshly generated id.
func (r *Registry) Add(label string) (Entry, error) {
	if !ValidLabel(label) {
		return Entry{}, ErrValidation
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.freshID(r.idSet())
	if err != nil {
		return Entry{}, err
	}
	entry := Entry{Label: label, ID: id}
	next := append(cloneEntries(r.entries), entry)
	if err := r.commit(next); err != nil {
		return Entry{}, err
	}
	r.log.Info("tab added", zap.String("id", id), zap.String("label", label))
	return entry, nil
}

// Rename changes an entry's label. Unknown ids and unchanged labels are
// no-ops.
func (r *Registry) Rename(id, label string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil
	}
	if !ValidLabel(label) {
		return ErrValidation
	}
	if r.entries[i].Label == label {
		return nil
	}
	next := cloneEntries(r.entries)
	next[i].Label = label
	if err := r.commit(next); err != nil {
		return err
	}
	r.log.Info("tab renamed", zap.String("id", id), zap.String("label", label))
	return nil
}

// Delete removes an entry and any favorite that references it. Unknown ids
// are no-ops.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil
	}
	var prev []Favorite
	if r.favorites != nil {
		prev = r.favorites.List()
		if err := r.favorites.Remove(id); err != nil {
			return fmt.Errorf("remove favorite: %w", err)
		}
	}
	next := make([]Entry, 0, len(r.entries)-1)
	next = append(next, r.entries[:i]...)
	next = append(next, r.entries[i+1:]...)
	if err := r.commit(next); err != nil {
		r.restoreFavorites(prev)
		return err
	}
	r.log.Info("tab deleted", zap.String("id", id))
	return nil
}

// ImportMerge appends incoming tabs whose label is not already present.
// Incoming ids are never reused. The whole batch is written and announced
// once; it returns how many entries were added.
func (r *Registry) ImportMerge(incoming []ImportTab) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	labels := make(map[string]bool, len(r.entries)+len(incoming))
	for _, e := range r.entries {
		labels[e.Label] = true
	}
	ids := r.idSet()

	next := cloneEntries(r.entries)
	added := 0
	for _, t := range incoming {
		if !ValidLabel(t.Label) || labels[t.Label] {
			continue
		}
		id, err := r.freshID(ids)
		if err != nil {
			return 0, err
		}
		ids[id] = true
		labels[t.Label] = true
		next = append(next, Entry{Label: t.Label, ID: id})
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := r.commit(next); err != nil {
		return 0, err
	}
	r.log.Info("tabs imported", zap.Int("offered", len(incoming)), zap.Int("added", added))
	return added, nil
}

// ExportSnapshot returns the versioned export document for the current list.
func (r *Registry) ExportSnapshot() Document {
	return Document{
		Type:    DocumentType,
		Version: DocumentVersion,
		Tabs:    r.List(),
	}
}

// Reset clears favorites and restores DefaultTabs.
func (r *Registry) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var prev []Favorite
	if r.favorites != nil {
		prev = r.favorites.List()
		if err := r.favorites.Clear(); err != nil {
			return fmt.Errorf("clear favorites: %w", err)
		}
	}
	if err := r.commit(cloneEntries(DefaultTabs)); err != nil {
		r.restoreFavorites(prev)
		return err
	}
	r.log.Info("tabs reset to defaults")
	return nil
}

// restoreFavorites puts back favorites removed ahead of a tab write that
// then failed.
func (r *Registry) restoreFavorites(prev []Favorite) {
	if r.favorites == nil {
		return
	}
	if err := r.favorites.restore(prev); err != nil {
		r.log.Warn("favorites rollback failed", zap.Error(err))
	}
}

func (r *Registry) commit(next []Entry) error {
	if err := r.store.Set(store.KeyTabs, next); err != nil {
		return IOError("save tabs", err)
	}
	r.entries = next
	r.notifier.Notify(state.KindTabs)
	return nil
}

func (r *Registry) indexOf(id string) int {
	for i, e := range r.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) idSet() map[string]bool {
	ids := make(map[string]bool, len(r.entries))
	for _, e := range r.entries {
		ids[e.ID] = true
	}
	return ids
}

var errIDExhausted = errors.New("could not generate a unique tab id")

func (r *Registry) freshID(taken map[string]bool) (string, error) {
	for range maxIDAttempts {
		id := r.newID()
		if id != "" && !taken[id] {
			return id, nil
		}
	}
	return "", errIDExhausted
}
