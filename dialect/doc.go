// Package dialect provides the database dialect abstraction used by models
// and migrations.
//
// # Supported Dialects
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// JSON columns are stored as jsonb on PostgreSQL and json on MySQL and SQLite.
//
// # Driver Interface
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// # Usage
//
//	import (
//	    "github.com/syssam/schemafield/dialect"
//	    "github.com/syssam/schemafield/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
// Sub-packages:
//
//   - dialect/sql: database/sql backed driver and debug logging
//   - dialect/sql/schema: table definitions and migrations
//   - dialect/sqlschema: SQL annotations for fields and models
package dialect
