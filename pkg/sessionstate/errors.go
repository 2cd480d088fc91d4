package sessionstate

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	n, err := inv.ExecNonQuery(ctx, false)
//	if errors.Is(err, sessionstate.ErrConnectionFailed) {
//	    // Handle connectivity problems separately from command failures
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates the database connection could not
	// be established.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication
	// method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrUnknownOutputParam indicates a requested output parameter name
	// is not in the declared set.
	ErrUnknownOutputParam = errors.New("unknown output parameter")

	// ErrInvocationClosed indicates the invocation's connection was
	// already released.
	ErrInvocationClosed = errors.New("invocation closed")
)

// ConnectivityError reports that the owned connection could not be
// opened. For authentication failures Identity names the principal
// that was attempted, so operators can tell a misconfigured login
// from an unreachable server.
type ConnectivityError struct {
	// Identity is the attempted login principal: the process identity
	// under integrated authentication, otherwise the configured user ID.
	// Empty when the failure happened before authentication.
	Identity string

	// Err is the underlying driver error.
	Err error
}

// Error implements the error interface.
func (e *ConnectivityError) Error() string {
	if e.Identity != "" {
		return fmt.Sprintf("cannot connect to session database as %q: %v", e.Identity, e.Err)
	}
	return fmt.Sprintf("cannot connect to session database: %v", e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *ConnectivityError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrConnectionFailed) match any ConnectivityError.
func (e *ConnectivityError) Is(target error) bool {
	return target == ErrConnectionFailed
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	}

	return ExitGeneralError
}
