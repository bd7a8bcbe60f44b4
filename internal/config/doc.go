// Package config loads termnote's runtime configuration.
//
// # Resolution Order
//
// Values are layered, later sources winning:
//
//  1. Built-in defaults
//  2. The TOML file (~/.config/termnote/config.toml unless a path is given)
//  3. TERMNOTE_* environment variables
//  4. Command-line flags, applied by cmd/termnote after Load returns
//
// A missing config file is not an error. Empty or whitespace-only values
// fall back to the defaults.
//
// # Default Values
//
//   - State file: ~/.local/state/termnote/state.json
//   - Log file: ~/.local/state/termnote/termnote.log
//   - Log level: info
//   - Shell: $SHELL, then /bin/sh (chosen by the terminal host)
//   - Output buffer: 256 KiB per terminal
//   - PTY size: 120x32
//
// # TOML Format
//
//	state_path = "~/.local/state/termnote/state.json"
//	log_path = "~/.local/state/termnote/termnote.log"
//	log_level = "debug"
//	shell = "/bin/zsh"
//	working_dir = "~/src"
//	output_buffer_kb = 512
//	cols = 120
//	rows = 32
//
// # Environment
//
// Every field can be overridden with the upper-cased, underscore-separated
// field name under the TERMNOTE prefix: TERMNOTE_STATE_PATH,
// TERMNOTE_LOG_PATH, TERMNOTE_LOG_LEVEL, TERMNOTE_SHELL,
// TERMNOTE_WORKING_DIR, TERMNOTE_OUTPUT_BUFFER_KB, TERMNOTE_COLS and
// TERMNOTE_ROWS.
//
// # Path Expansion
//
// state_path, log_path and working_dir accept a leading ~ and are returned
// as absolute paths.
package config
