package sqlcmd

import (
	"context"

	"github.com/charles-muller/AspNetSessionState/pkg/sessionstate"
)

// ConnOwner owns at most one dedicated connection on behalf of a single
// invocation. The connection is acquired lazily on first use and held
// until Release. Not safe for concurrent use: an owner represents one
// in-flight logical operation.
type ConnOwner struct {
	opener   Opener
	conn     Conn
	released bool
}

// NewConnOwner creates an owner that acquires connections from opener.
func NewConnOwner(opener Opener) *ConnOwner {
	return &ConnOwner{opener: opener}
}

// EnsureOpen acquires the owned connection if not already open.
// Idempotent while the owner is live; fails once Release was called.
func (o *ConnOwner) EnsureOpen(ctx context.Context) (Conn, error) {
	if o.released {
		return nil, sessionstate.ErrInvocationClosed
	}
	if o.conn != nil {
		return o.conn, nil
	}

	conn, err := o.opener.Open(ctx)
	if err != nil {
		return nil, err
	}
	o.conn = conn
	return o.conn, nil
}

// Reset closes the current connection so the next EnsureOpen acquires a
// fresh one. Used after the server is assumed to have dropped the
// connection. No-op when nothing is open.
func (o *ConnOwner) Reset() {
	if o.conn != nil {
		_ = o.conn.Close()
		o.conn = nil
	}
}

// Release closes the owned connection and retires the owner.
// Safe to call multiple times; called on every exit path.
func (o *ConnOwner) Release() error {
	if o.released {
		return nil
	}
	o.released = true
	if o.conn == nil {
		return nil
	}
	err := o.conn.Close()
	o.conn = nil
	return err
}

// Identity names the login principal connections authenticate as.
func (o *ConnOwner) Identity() string {
	return o.opener.Identity()
}
