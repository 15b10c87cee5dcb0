// Package file provides the TOML configuration store.
//
// The store reads ~/.ctxport/config.toml, or config.toml inside the
// directory named by CTXPORT_CONFIG_DIR. Nested tables are flattened into
// dot-notation keys, so [sessions.claude] cookies is read as
// "sessions.claude.cookies".
package file
