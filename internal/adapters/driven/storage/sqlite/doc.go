// Package sqlite provides the durable implementation of driven.VectorStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Several named collections can share one
// database file; each has its own records, hash index and recorded embedding model.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// NewStore keeps the database at <dataDir>/vectors.db; the configured default
// data directory is ~/.ragcore/data. NewTempStore places it in a temporary
// directory that is removed on Close.
//
// # Ranking
//
// Queries load the filtered candidate set and rank it by bounded cosine distance
// in process. This is exact and suits collections of personal-document scale.
//
// # Thread Safety
//
// All operations are thread-safe. Mutations are serialised by the store and
// SQLite runs in WAL mode so reads never observe a partial add or clear.
package sqlite
