// Package file provides file-backed configuration persistence.
//
// Configuration lives in a TOML file (~/.lumen/config.toml by default).
// Nested tables are exposed through dotted key paths, so [llm] model = "x"
// reads as "llm.model". Every mutation persists immediately.
package file
