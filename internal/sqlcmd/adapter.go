package sqlcmd

import (
	"context"
	"database/sql"
)

// DBOpener adapts *sql.DB to the Opener interface. Each Open acquires a
// dedicated connection from the pool, preserving the one-connection-per-
// invocation ownership model while pooling stays with database/sql.
//
// Thread-Safety: Safe for concurrent use (*sql.DB is thread-safe); the
// connections it hands out are not.
type DBOpener struct {
	db       *sql.DB
	identity string
}

// NewDBOpener creates an opener over db. identity names the login
// principal the pool authenticates as, used for connectivity errors.
func NewDBOpener(db *sql.DB, identity string) *DBOpener {
	return &DBOpener{db: db, identity: identity}
}

// Open acquires a dedicated connection from the pool.
func (o *DBOpener) Open(ctx context.Context) (Conn, error) {
	conn, err := o.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &connAdapter{conn: conn}, nil
}

// Identity names the login principal connections authenticate as.
func (o *DBOpener) Identity() string {
	return o.identity
}

// connAdapter adapts *sql.Conn to the Conn interface.
type connAdapter struct {
	conn *sql.Conn
}

// ExecContext executes a command without returning rows.
func (c *connAdapter) ExecContext(ctx context.Context, query string, args ...any) (Result, error) {
	return c.conn.ExecContext(ctx, query, args...)
}

// QueryContext executes a command that returns rows.
func (c *connAdapter) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Close returns the connection to the pool.
func (c *connAdapter) Close() error {
	return c.conn.Close()
}

// Verify the adapters satisfy their interfaces at compile time
var (
	_ Opener = (*DBOpener)(nil)
	_ Conn   = (*connAdapter)(nil)
)
