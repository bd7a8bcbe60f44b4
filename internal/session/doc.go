// Package session owns the mapping from notebook entries to live terminal
// sessions. Each entry has at most one session; running an entry again
// disposes the old terminal before creating the next. A lock predicate,
// consulted on every run, can block execution entirely.
package session
