// Package sqlite provides a SQLite-backed implementation of the driven
// storage ports.
//
// It uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. One database file serves three stores:
//
//   - CatalogStore: the scraped product rows, replaced wholesale per refresh
//   - ChunkIndex: indexed chunks with optional embeddings
//   - SchedulerStore: scheduled task state and run history
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files; applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.shopdesk/data/shopdesk.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. The store opens the database
// in WAL mode with a busy timeout.
package sqlite
