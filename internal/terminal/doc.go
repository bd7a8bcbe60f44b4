// Package terminal hosts shell sessions on pseudo-terminals.
//
// A Manager starts the configured shell under a PTY for every terminal the
// session controller asks for. Output is read continuously into a bounded
// ring buffer that the UI renders and the CLI mirrors to stdout; the most
// recently shown terminal is the focused one.
package terminal
