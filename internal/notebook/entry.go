package notebook

import "strings"

// MaxFavorites bounds the favorites list.
const MaxFavorites = 5

// SlotCount is the number of addressable favorite slots.
const SlotCount = MaxFavorites

// Entry is a named shell command. The label is the command text.
type Entry struct {
	Label string `json:"label"`
	ID    string `json:"id"`
}

// Favorite pins an entry by id. Label is a copy taken when the favorite was
// added; renaming the entry afterwards does not update it.
type Favorite struct {
	Label string `json:"label"`
	ID    string `json:"id"`
}

// Slot is one of the SlotCount quick-access bindings.
type Slot struct {
	Index int
	Label string
	ID    string
	Bound bool
}

// DefaultTabs seeds the registry on first run.
var DefaultTabs = []Entry{
	{Label: "dir", ID: "terminal-1"},
	{Label: "node -v", ID: "terminal-2"},
	{Label: "code .", ID: "terminal-3"},
	{Label: "help", ID: "terminal-4"},
	{Label: "systeminfo", ID: "terminal-5"},
	{Label: "yo", ID: "terminal-6"},
	{Label: "npm install", ID: "terminal-7"},
	{Label: "npm update", ID: "terminal-8"},
	{Label: "git status", ID: "terminal-9"},
	{Label: "git pull", ID: "terminal-10"},
	{Label: "git push", ID: "terminal-11"},
	{Label: "npm run build", ID: "terminal-12"},
	{Label: "npm start", ID: "terminal-13"},
	{Label: "npm run test", ID: "terminal-14"},
	{Label: "npx create-react-app my-app", ID: "terminal-15"},
	{Label: "python --version", ID: "terminal-16"},
	{Label: "pip install package_name", ID: "terminal-17"},
	{Label: "explorer .", ID: "terminal-18"},
	{Label: "cls", ID: "terminal-19"},
	{Label: "clear", ID: "terminal-20"},
	{Label: "echo Hello World", ID: "terminal-21"},
}

// ValidLabel reports whether label is non-empty after trimming.
func ValidLabel(label string) bool {
	return strings.TrimSpace(label) != ""
}

func cloneEntries(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	dup := make([]Entry, len(entries))
	copy(dup, entries)
	return dup
}

func cloneFavorites(items []Favorite) []Favorite {
	if items == nil {
		return nil
	}
	dup := make([]Favorite, len(items))
	copy(dup, items)
	return dup
}
