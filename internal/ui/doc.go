// Package ui is the Bubble Tea front end: a tab list, a favorites bar with
// numbered slots, and a pane mirroring the focused terminal's output.
package ui
