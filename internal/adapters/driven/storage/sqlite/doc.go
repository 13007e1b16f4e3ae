// Package sqlite provides the SQLite-backed chunk store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. Embedding vectors are
// persisted as little-endian float32 blobs and round-trip bit-exact.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory as .up.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.lumen/data/chunks.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. Writes additionally serialise
// through a store-level mutex on top of SQLite's WAL-mode locking, so a
// reader never observes a partially written batch.
package sqlite
