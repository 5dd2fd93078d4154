// Package sqlite provides a SQLite-based implementation of the media index.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// The files table carries a nullable integer capture_mode (the classification
// attribute) and an integer capture_timestamp, indexed, that groups burst sets.
//
// # Filters
//
// domain.RecordFilter values are compiled to parameterized WHERE clauses.
// A nested Exclude filter becomes "id NOT IN (SELECT id FROM files WHERE ...)"
// with its own bound arguments; caller input is never concatenated into SQL.
//
// # Data Location
//
// By default, the database is stored at ~/.mediaindex/data/index.db
//
// # Transactions
//
// IndexStore.WithinTx runs a callback on a store bound to one sql.Tx. The
// store does not serialise writers itself; callers keep a single writer per
// database.
package sqlite
