package sqlcmd

import "context"

// Conn is the subset of a dedicated database connection the command
// layer needs. Production code adapts *sql.Conn; tests substitute mocks.
type Conn interface {
	// ExecContext executes a command without returning rows.
	ExecContext(ctx context.Context, query string, args ...any) (Result, error)

	// QueryContext executes a command that returns rows.
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)

	// Close returns the connection to the driver's pool.
	Close() error
}

// Result reports the outcome of a non-query command.
type Result interface {
	RowsAffected() (int64, error)
}

// Rows is a forward cursor over result rows.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// Opener acquires dedicated connections for invocations.
type Opener interface {
	// Open acquires one dedicated connection. The caller owns it and
	// must Close it.
	Open(ctx context.Context) (Conn, error)

	// Identity names the login principal Open authenticates as, for
	// connectivity error reporting.
	Identity() string
}
