// Package logtail reads the tail of termnote's JSON log file and renders
// each line for a terminal.
//
// Read keeps only the last N lines in a ring, so large logs are scanned in
// one pass with bounded memory. Parse decodes the fields written by the
// logging package; lines it cannot decode are shown verbatim by callers.
package logtail
