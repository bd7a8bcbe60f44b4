package notebook

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/termnote/internal/state"
	"github.com/five82/termnote/internal/store"
)

// failingStore wraps a store and fails writes while fail is set. A
// non-empty key limits the failures to that key.
type failingStore struct {
	store.Store
	fail bool
	key  string
}

func (s *failingStore) Set(key string, v any) error {
	if s.fail && (s.key == "" || s.key == key) {
		return errors.New("disk full")
	}
	return s.Store.Set(key, v)
}

type harness struct {
	store     *store.Memory
	notifier  *state.Notifier
	registry  *Registry
	favorites *Favorites
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{store: store.NewMemory(), notifier: &state.Notifier{}}
	opts := Options{Store: h.store, Notifier: h.notifier}
	h.registry = NewRegistry(opts)
	h.favorites = NewFavorites(opts)
	h.registry.AttachFavorites(h.favorites)
	require.NoError(t, h.registry.Load())
	live := h.registry.IDs()
	require.NoError(t, h.favorites.Load(func(id string) bool { return live[id] }))
	return h
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestRegistry_LoadSeedsDefaultsAndPersists(t *testing.T) {
	mem := store.NewMemory()
	r := NewRegistry(Options{Store: mem})
	require.NoError(t, r.Load())

	assert.Equal(t, DefaultTabs, r.List())

	var saved []Entry
	ok, err := mem.Get(store.KeyTabs, &saved)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, DefaultTabs, saved)

	// A second start reads the persisted list rather than reseeding.
	require.NoError(t, r.Rename("terminal-1", "ls -la"))
	again := NewRegistry(Options{Store: mem})
	require.NoError(t, again.Load())
	got, ok := again.Get("terminal-1")
	require.True(t, ok)
	assert.Equal(t, "ls -la", got.Label)
}

func TestRegistry_LoadKeepsPersistedEmptyList(t *testing.T) {
	mem := store.NewMemory()
	require.NoError(t, mem.Set(store.KeyTabs, []Entry{}))
	r := NewRegistry(Options{Store: mem})
	require.NoError(t, r.Load())
	assert.Empty(t, r.List())
}

func TestRegistry_LoadRepairsDuplicatesAndBlankLabels(t *testing.T) {
	mem := store.NewMemory()
	require.NoError(t, mem.Set(store.KeyTabs, []Entry{
		{Label: "ls", ID: "a"},
		{Label: "pwd", ID: "a"},
		{Label: "   ", ID: "b"},
		{Label: "whoami", ID: ""},
	}))
	r := NewRegistry(Options{Store: mem, NewID: sequentialIDs()})
	require.NoError(t, r.Load())

	assert.Equal(t, []Entry{{Label: "ls", ID: "a"}, {Label: "whoami", ID: "id-1"}}, r.List())

	var saved []Entry
	_, err := mem.Get(store.KeyTabs, &saved)
	require.NoError(t, err)
	assert.Equal(t, r.List(), saved)
}

func TestRegistry_AddRejectsBlankLabels(t *testing.T) {
	h := newHarness(t)
	before := h.registry.List()
	rev := h.notifier.Revision()

	for _, label := range []string{"", "   ", "\t\n"} {
		_, err := h.registry.Add(label)
		require.ErrorIs(t, err, ErrValidation, "label %q", label)
	}
	assert.Equal(t, before, h.registry.List())
	assert.Equal(t, rev, h.notifier.Revision())
}

func TestRegistry_AddAppendsPersistsAndNotifies(t *testing.T) {
	h := newHarness(t)
	events, unsubscribe := h.notifier.Subscribe()
	defer unsubscribe()

	entry, err := h.registry.Add("ls")
	require.NoError(t, err)
	assert.Equal(t, "ls", entry.Label)
	assert.NotEmpty(t, entry.ID)

	list := h.registry.List()
	assert.Equal(t, entry, list[len(list)-1])

	var saved []Entry
	_, err = h.store.Get(store.KeyTabs, &saved)
	require.NoError(t, err)
	assert.Equal(t, list, saved)

	ev := <-events
	assert.Equal(t, state.KindTabs, ev.Kind)
}

func TestRegistry_AddKeepsLabelVerbatim(t *testing.T) {
	h := newHarness(t)
	entry, err := h.registry.Add("  echo hi  ")
	require.NoError(t, err)
	assert.Equal(t, "  echo hi  ", entry.Label)
}

func TestRegistry_AddSkipsCollidingIDs(t *testing.T) {
	ids := []string{"terminal-1", "terminal-2", "fresh"}
	next := 0
	r := NewRegistry(Options{NewID: func() string {
		id := ids[next]
		next++
		return id
	}})
	require.NoError(t, r.Load())

	entry, err := r.Add("ls")
	require.NoError(t, err)
	assert.Equal(t, "fresh", entry.ID)
}

func TestRegistry_AddFailsWhenIDsExhausted(t *testing.T) {
	r := NewRegistry(Options{NewID: func() string { return "terminal-1" }})
	require.NoError(t, r.Load())

	_, err := r.Add("ls")
	require.Error(t, err)
	assert.Len(t, r.List(), len(DefaultTabs))
}

func TestRegistry_RapidAddsNeverCollide(t *testing.T) {
	r := NewRegistry(Options{})
	require.NoError(t, r.Load())

	for i := range 200 {
		_, err := r.Add(fmt.Sprintf("cmd %d", i))
		require.NoError(t, err)
	}
	assert.Len(t, r.IDs(), len(DefaultTabs)+200)
}

func TestRegistry_Rename(t *testing.T) {
	h := newHarness(t)
	rev := h.notifier.Revision()

	require.ErrorIs(t, h.registry.Rename("terminal-1", " "), ErrValidation)
	require.NoError(t, h.registry.Rename("missing", "ls"))
	require.NoError(t, h.registry.Rename("missing", " "), "unknown ids win over label validation")
	require.NoError(t, h.registry.Rename("terminal-1", "dir"))
	assert.Equal(t, rev, h.notifier.Revision(), "no-op renames must not notify")

	require.NoError(t, h.registry.Rename("terminal-1", "ls -la"))
	got, _ := h.registry.Get("terminal-1")
	assert.Equal(t, "ls -la", got.Label)
	assert.Equal(t, rev+1, h.notifier.Revision())
}

func TestRegistry_RenameDoesNotTouchFavoriteLabel(t *testing.T) {
	h := newHarness(t)
	entry, _ := h.registry.Get("terminal-9")
	require.NoError(t, h.favorites.Add(entry))

	require.NoError(t, h.registry.Rename("terminal-9", "git status -sb"))

	favs := h.favorites.List()
	require.Len(t, favs, 1)
	assert.Equal(t, "git status", favs[0].Label)
}

func TestRegistry_DeleteCascadesToFavorites(t *testing.T) {
	h := newHarness(t)
	entry, _ := h.registry.Get("terminal-9")
	require.NoError(t, h.favorites.Add(entry))

	require.NoError(t, h.registry.Delete("terminal-9"))

	assert.False(t, h.registry.Has("terminal-9"))
	assert.False(t, h.favorites.Contains("terminal-9"))
	_, bound := h.favorites.Slot(0)
	assert.False(t, bound)

	var saved []Favorite
	_, err := h.store.Get(store.KeyFavorites, &saved)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestRegistry_DeleteUnknownIsNoop(t *testing.T) {
	h := newHarness(t)
	writes := h.store.Writes()
	require.NoError(t, h.registry.Delete("missing"))
	assert.Equal(t, writes, h.store.Writes())
}

func TestRegistry_FailedWriteLeavesStateUntouched(t *testing.T) {
	fs := &failingStore{Store: store.NewMemory()}
	r := NewRegistry(Options{Store: fs})
	require.NoError(t, r.Load())
	before := r.List()

	fs.fail = true
	_, err := r.Add("ls")
	require.ErrorIs(t, err, ErrIO)
	require.ErrorContains(t, err, "disk full")
	require.ErrorIs(t, r.Rename("terminal-1", "ls"), ErrIO)
	require.ErrorIs(t, r.Delete("terminal-1"), ErrIO)
	_, err = r.ImportMerge([]ImportTab{{Label: "new"}})
	require.ErrorIs(t, err, ErrIO)

	assert.Equal(t, before, r.List())
}

func TestRegistry_FailedTabWriteRestoresCascadedFavorites(t *testing.T) {
	fs := &failingStore{Store: store.NewMemory(), key: store.KeyTabs}
	opts := Options{Store: fs}
	r := NewRegistry(opts)
	f := NewFavorites(opts)
	r.AttachFavorites(f)
	require.NoError(t, r.Load())
	require.NoError(t, f.Load(nil))
	entry, _ := r.Get("terminal-1")
	require.NoError(t, f.Add(entry))
	before := r.List()

	fs.fail = true
	require.ErrorIs(t, r.Delete("terminal-1"), ErrIO)
	assert.True(t, r.Has("terminal-1"))
	assert.True(t, f.Contains("terminal-1"))
	slot, bound := f.Slot(0)
	require.True(t, bound)
	assert.Equal(t, "terminal-1", slot.ID)

	require.ErrorIs(t, r.Reset(), ErrIO)
	assert.Equal(t, before, r.List())
	assert.Equal(t, []Favorite{{Label: entry.Label, ID: "terminal-1"}}, f.List())

	var saved []Favorite
	_, err := fs.Get(store.KeyFavorites, &saved)
	require.NoError(t, err)
	assert.Equal(t, f.List(), saved)
}

func TestRegistry_LoadReseedsUndecodableTabs(t *testing.T) {
	mem := store.NewMemory()
	require.NoError(t, mem.Set(store.KeyTabs, "not a list"))
	r := NewRegistry(Options{Store: mem})

	require.NoError(t, r.Load())
	assert.Equal(t, DefaultTabs, r.List())

	var saved []Entry
	ok, err := mem.Get(store.KeyTabs, &saved)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, DefaultTabs, saved)
}

func TestRegistry_LoadSurfacesReadFailures(t *testing.T) {
	r := NewRegistry(Options{Store: brokenReader{store.NewMemory()}})
	err := r.Load()
	require.ErrorIs(t, err, ErrIO)
	assert.Equal(t, 1, strings.Count(err.Error(), "load tabs"))
}

// brokenReader fails every read with an error that is not corruption.
type brokenReader struct {
	store.Store
}

func (brokenReader) Get(string, any) (bool, error) {
	return false, errors.New("permission denied")
}

func TestRegistry_ImportMergeDedupsByLabel(t *testing.T) {
	h := newHarness(t)
	doc := h.registry.ExportSnapshot()

	n, err := h.registry.ImportMerge(ImportTabsFrom(doc.Tabs))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, doc.Tabs, h.registry.List())
}

func TestRegistry_ImportMergeAssignsFreshIDs(t *testing.T) {
	h := newHarness(t)
	before := h.registry.IDs()
	rev := h.notifier.Revision()

	n, err := h.registry.ImportMerge([]ImportTab{
		{Label: "kubectl get pods", ID: "terminal-1"},
		{Label: "dir", ID: "other"},
		{Label: "kubectl get pods", ID: "dup"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, rev+1, h.notifier.Revision(), "batch announces once")

	list := h.registry.List()
	last := list[len(list)-1]
	assert.Equal(t, "kubectl get pods", last.Label)
	assert.False(t, before[last.ID], "imported id %q collides with an existing id", last.ID)
}

func TestRegistry_ImportGitStatusIntoEmptyRegistry(t *testing.T) {
	mem := store.NewMemory()
	require.NoError(t, mem.Set(store.KeyTabs, []Entry{{Label: "ls", ID: "a"}}))
	r := NewRegistry(Options{Store: mem})
	require.NoError(t, r.Load())

	n, err := r.ImportMerge([]ImportTab{{Label: "git status"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "git status", list[1].Label)
	assert.NotEqual(t, "a", list[1].ID)
}

func TestRegistry_ExportSnapshot(t *testing.T) {
	h := newHarness(t)
	doc := h.registry.ExportSnapshot()
	assert.Equal(t, DocumentType, doc.Type)
	assert.Equal(t, DocumentVersion, doc.Version)
	assert.Equal(t, h.registry.List(), doc.Tabs)
}

func TestRegistry_ResetRestoresDefaultsAndClearsFavorites(t *testing.T) {
	h := newHarness(t)
	_, err := h.registry.Add("ls")
	require.NoError(t, err)
	entry, _ := h.registry.Get("terminal-2")
	require.NoError(t, h.favorites.Add(entry))

	require.NoError(t, h.registry.Reset())
	assert.Equal(t, DefaultTabs, h.registry.List())
	assert.Zero(t, h.favorites.Len())
}

// Random add/rename/delete/favorite sequences must keep ids unique and
// every favorite pointing at a live entry.
func TestRegistry_InvariantsUnderRandomOperations(t *testing.T) {
	h := newHarness(t)
	rng := rand.New(rand.NewSource(7))

	pick := func() (Entry, bool) {
		list := h.registry.List()
		if len(list) == 0 {
			return Entry{}, false
		}
		return list[rng.Intn(len(list))], true
	}

	for i := range 500 {
		switch rng.Intn(5) {
		case 0:
			_, _ = h.registry.Add(fmt.Sprintf("cmd %d", i))
		case 1:
			if e, ok := pick(); ok {
				_ = h.registry.Rename(e.ID, fmt.Sprintf("renamed %d", i))
			}
		case 2:
			if e, ok := pick(); ok {
				require.NoError(t, h.registry.Delete(e.ID))
			}
		case 3:
			if e, ok := pick(); ok {
				_ = h.favorites.Add(e)
			}
		case 4:
			favs := h.favorites.List()
			if len(favs) > 0 {
				require.NoError(t, h.favorites.Remove(favs[rng.Intn(len(favs))].ID))
			}
		}

		ids := map[string]bool{}
		for _, e := range h.registry.List() {
			require.False(t, ids[e.ID], "duplicate id %q", e.ID)
			ids[e.ID] = true
		}
		favs := h.favorites.List()
		require.LessOrEqual(t, len(favs), MaxFavorites)
		for _, f := range favs {
			require.True(t, ids[f.ID], "favorite %q has no entry", f.ID)
		}
	}
}
