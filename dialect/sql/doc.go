// Package sql provides a dialect.Driver backed by database/sql.
//
// Open a driver with one of the registered database/sql drivers:
//
//	import (
//	    _ "github.com/lib/pq"
//	    _ "modernc.org/sqlite"
//	)
//
//	drv, err := sql.Open(dialect.SQLite, "file:app.db?_pragma=foreign_keys(1)")
//
// or wrap an existing *sql.DB:
//
//	drv := sql.OpenDB(dialect.Postgres, db)
//
// Statements can be logged with slog by wrapping the driver:
//
//	debug := sql.NewDebugDriver(drv, sql.DebugWithLogger(logger))
package sql
