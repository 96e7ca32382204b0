package dialect

import (
	"context"
	"strconv"
)

// Dialect names for external usage.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// ExecQuerier wraps the two database operations used by models and migrations.
// args is a []any and v is either nil, a *sql.Result or a *sql.Rows of the
// dialect/sql package.
type ExecQuerier interface {
	Exec(ctx context.Context, query string, args, v any) error
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all necessary operations for models.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(ctx context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps the Exec and Query operations in transaction.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

// Placeholder returns the bind parameter for the i-th (1-based) argument.
func Placeholder(name string, i int) string {
	if name == Postgres {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}

// Quote quotes an identifier for the given dialect.
func Quote(name, ident string) string {
	if name == MySQL {
		return "`" + ident + "`"
	}
	return `"` + ident + `"`
}
