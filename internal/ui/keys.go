package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	ToggleLock key.Binding
	Escape     key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Tab actions
	Run      key.Binding
	Add      key.Binding
	Rename   key.Binding
	Delete   key.Binding
	Copy     key.Binding
	Favorite key.Binding

	// Favorites
	Favorites       key.Binding
	ManageFavorites key.Binding
	Slots           [5]key.Binding
	SlotHint        key.Binding

	// Files
	Export key.Binding
	Import key.Binding

	// Modals
	Confirm key.Binding
	Remove  key.Binding
	Yes     key.Binding
	No      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	k := keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		ToggleLock: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Lock/unlock running"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("ctrl+u", "pgup"),
			key.WithHelp("ctrl+u", "Scroll output up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("ctrl+d", "pgdown"),
			key.WithHelp("ctrl+d", "Scroll output down"),
		),

		Run: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Run command"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Add tab"),
		),
		Rename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Rename tab"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Delete tab"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "Copy command"),
		),
		Favorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Add to favorites"),
		),

		Favorites: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Run a favorite"),
		),
		ManageFavorites: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "Manage favorites"),
		),

		Export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Export tabs"),
		),
		Import: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "Import tabs"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "Remove"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y", "Y", "enter"),
			key.WithHelp("y", "Yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "No"),
		),
	}
	for i := range k.Slots {
		n := string(rune('1' + i))
		k.Slots[i] = key.NewBinding(
			key.WithKeys(n),
			key.WithHelp(n, "Run favorite "+n),
		)
	}
	k.SlotHint = key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5"),
		key.WithHelp("1-5", "Run favorite slot"),
	)
	return k
}

// ShortHelp returns key bindings for the command bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Run, k.Add, k.Favorite, k.Favorites, k.Help, k.Quit}
}

// FullHelp returns key bindings for the help overlay, grouped by section.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.PageUp, k.PageDown},
		{k.Run, k.Add, k.Rename, k.Delete, k.Copy},
		{k.Favorite, k.Favorites, k.ManageFavorites, k.SlotHint},
		{k.Export, k.Import},
		{k.ToggleLock, k.CycleTheme, k.Help, k.Quit},
	}
}
