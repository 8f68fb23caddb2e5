// Package sqlite provides a SQLite-backed implementation of the VectorIndex port.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Chunk text, metadata and embeddings live
// in a single chunks table; similarity search is an exact scan over the embeddings
// of the rows that pass the metadata filter.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// The database is stored at {vectordb_dir}/vectors.db, by default
// data/vectordb/vectors.db relative to the working directory.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
