package notebook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/termnote/internal/state"
	"github.com/five82/termnote/internal/store"
)

func TestFavorites_AddUpToCapacity(t *testing.T) {
	h := newHarness(t)
	tabs := h.registry.List()

	for i := range MaxFavorites {
		require.NoError(t, h.favorites.Add(tabs[i]))
	}
	rev := h.notifier.Revision()

	err := h.favorites.Add(tabs[MaxFavorites])
	require.ErrorIs(t, err, ErrCapacity)
	assert.EqualError(t, err, "favorites can have up to 5 tabs only")
	assert.Equal(t, MaxFavorites, h.favorites.Len())
	assert.Equal(t, rev, h.notifier.Revision())
}

func TestFavorites_AddDuplicate(t *testing.T) {
	h := newHarness(t)
	entry, _ := h.registry.Get("terminal-3")
	require.NoError(t, h.favorites.Add(entry))
	require.ErrorIs(t, h.favorites.Add(entry), ErrDuplicate)
	assert.Equal(t, 1, h.favorites.Len())
}

func TestFavorites_AddWithoutIDFails(t *testing.T) {
	f := NewFavorites(Options{})
	require.ErrorIs(t, f.Add(Entry{Label: "ls"}), ErrNotFound)
}

func TestFavorites_AddPersistsAndNotifies(t *testing.T) {
	h := newHarness(t)
	events, unsubscribe := h.notifier.Subscribe()
	defer unsubscribe()

	entry, _ := h.registry.Get("terminal-9")
	require.NoError(t, h.favorites.Add(entry))

	var saved []Favorite
	ok, err := h.store.Get(store.KeyFavorites, &saved)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []Favorite{{Label: "git status", ID: "terminal-9"}}, saved)
	assert.Equal(t, state.KindFavorites, (<-events).Kind)
}

func TestFavorites_SlotsFollowFavorites(t *testing.T) {
	h := newHarness(t)
	for _, id := range []string{"terminal-9", "terminal-10"} {
		entry, _ := h.registry.Get(id)
		require.NoError(t, h.favorites.Add(entry))
	}

	slots := h.favorites.Slots()
	assert.Equal(t, Slot{Index: 0, Label: "git status", ID: "terminal-9", Bound: true}, slots[0])
	assert.Equal(t, Slot{Index: 1, Label: "git pull", ID: "terminal-10", Bound: true}, slots[1])
	for i := 2; i < SlotCount; i++ {
		assert.Equal(t, Slot{Index: i}, slots[i])
	}

	require.NoError(t, h.favorites.Remove("terminal-9"))
	s, bound := h.favorites.Slot(0)
	require.True(t, bound)
	assert.Equal(t, "terminal-10", s.ID)
	_, bound = h.favorites.Slot(1)
	assert.False(t, bound)
}

func TestFavorites_SlotOutOfRange(t *testing.T) {
	f := NewFavorites(Options{})
	for _, i := range []int{-1, SlotCount, 99} {
		s, bound := f.Slot(i)
		assert.False(t, bound)
		assert.Equal(t, i, s.Index)
	}
}

func TestFavorites_RemoveAbsentIsNoop(t *testing.T) {
	h := newHarness(t)
	writes := h.store.Writes()
	require.NoError(t, h.favorites.Remove("missing"))
	assert.Equal(t, writes, h.store.Writes())
	assert.False(t, h.favorites.HasFavorites())
}

func TestFavorites_FailedWriteLeavesListUntouched(t *testing.T) {
	fs := &failingStore{Store: store.NewMemory()}
	f := NewFavorites(Options{Store: fs})
	require.NoError(t, f.Add(Entry{Label: "ls", ID: "a"}))

	fs.fail = true
	require.ErrorIs(t, f.Add(Entry{Label: "pwd", ID: "b"}), ErrIO)
	require.ErrorIs(t, f.Remove("a"), ErrIO)
	require.ErrorIs(t, f.Clear(), ErrIO)

	assert.Equal(t, []Favorite{{Label: "ls", ID: "a"}}, f.List())
	s, bound := f.Slot(0)
	assert.True(t, bound)
	assert.Equal(t, "a", s.ID)
}

func TestFavorites_LoadDropsStaleDuplicateAndOverflow(t *testing.T) {
	mem := store.NewMemory()
	require.NoError(t, mem.Set(store.KeyFavorites, []Favorite{
		{Label: "gone", ID: "gone"},
		{Label: "a", ID: "a"},
		{Label: "a again", ID: "a"},
		{Label: "b", ID: "b"},
		{Label: "", ID: ""},
		{Label: "c", ID: "c"},
		{Label: "d", ID: "d"},
		{Label: "e", ID: "e"},
		{Label: "f", ID: "f"},
	}))
	live := map[string]bool{"a": true, "b": true, "c": true, "d": true, "e": true, "f": true}

	f := NewFavorites(Options{Store: mem})
	require.NoError(t, f.Load(func(id string) bool { return live[id] }))

	var ids []string
	for _, fav := range f.List() {
		ids = append(ids, fav.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids)

	var saved []Favorite
	_, err := mem.Get(store.KeyFavorites, &saved)
	require.NoError(t, err)
	assert.Equal(t, f.List(), saved)
}

func TestFavorites_LoadWithoutSavedList(t *testing.T) {
	mem := store.NewMemory()
	f := NewFavorites(Options{Store: mem})
	require.NoError(t, f.Load(nil))
	assert.Equal(t, []Favorite{}, f.List())
	assert.Zero(t, mem.Writes())
}

func TestFavorites_LoadDiscardsUndecodableList(t *testing.T) {
	mem := store.NewMemory()
	require.NoError(t, mem.Set(store.KeyFavorites, 5))
	f := NewFavorites(Options{Store: mem})

	require.NoError(t, f.Load(nil))
	assert.Equal(t, []Favorite{}, f.List())

	var saved []Favorite
	ok, err := mem.Get(store.KeyFavorites, &saved)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, saved)
}
