// Package app is the composition root of termnote.
//
// # Overview
//
// A Notebook owns every long-lived component: the state store, change
// notifier, tab registry, favorites manager, session controller and PTY
// terminal manager. It is built explicitly by cmd/termnote and handed to the
// UI; there are no package-level singletons.
//
// # Components
//
//   - notebook.go: construction, loading, reload and accessors
//   - commands.go: user-facing commands returning a Toast
//   - toast.go: toast levels and the error-to-toast mapping
//   - poller.go: modification-time polling when the state file cannot be watched
//   - clipboard.go: clipboard access for copying command text
//
// # Data Flow
//
//	┌──────────────┐
//	│   New()      │
//	└──────┬───────┘
//	       ├─────> store.NewFile()       State document + lock file
//	       ├─────> notebook.Registry     Load or seed default tabs
//	       ├─────> notebook.Favorites    Load, dropping orphans
//	       ├─────> session.Controller    Lock predicate installed
//	       └─────> terminal.Manager      PTY host
//
//	Watch():
//	┌─────────────────────────────────────────┐
//	│ fsnotify (or poller) sees another write │
//	│  └─> Reload()                           │
//	│      └─> Notify(KindExternal)           │
//	└─────────────────────────────────────────┘
//
// # Error Handling
//
// Commands never return errors. Each outcome becomes a Toast:
//
//   - Validation, import format and IO failures: error
//   - Favorites at capacity, locked terminal, unknown tab: warning
//   - Already a favorite, empty favorites: info
//
// A failed command leaves the tabs and favorites exactly as they were.
package app
