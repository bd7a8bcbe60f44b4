// Package logging builds the zap logger shared by every component. The TUI
// owns the terminal, so the default output is a JSON-lines file under the
// state directory.
package logging
