package store

import "time"

// SessionItem is one session row as returned by the state procedures.
type SessionItem struct {
	// ID is the session identifier (cookie value plus application suffix).
	ID string

	// Created and Expires are server-side UTC timestamps.
	Created time.Time
	Expires time.Time

	// Locked reports whether another request holds the item
	// exclusively; LockAge and LockCookie describe that lock.
	Locked     bool
	LockAge    time.Duration
	LockCookie int64

	// Timeout is the session timeout in minutes.
	Timeout int64

	// Item is the serialized session payload. Short and long items come
	// back in separate output parameters; at most one is non-NULL.
	Item []byte

	// ActionFlags carries the initialize-item flag for uninitialized
	// sessions.
	ActionFlags int64
}

// CreateResult reports the outcome of an insert-if-absent call.
type CreateResult int

const (
	// Created means this caller inserted the row.
	Created CreateResult = iota

	// AlreadyExists means a concurrent caller won the insert race;
	// treated as success.
	AlreadyExists
)
