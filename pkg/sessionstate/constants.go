package sessionstate

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Command completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or parameters
	ExitConnectionError = 11 // Failed to connect to database
)

const (
	// InMemoryRetryDelay is the busy-retry interval for conflicts on
	// memory-optimized tables. Those conflicts resolve within
	// microseconds, so the interval is deliberately tiny.
	InMemoryRetryDelay = 1 * time.Millisecond

	// MaxInMemoryRetries caps busy-retrying of in-memory conflicts.
	MaxInMemoryRetries = 10

	// FirstRetryDelay is the backoff before the first retry of a
	// fatal-severity fault, long enough for the server to recover
	// a dropped connection.
	FirstRetryDelay = 5 * time.Second

	// SteadyRetryDelay is the backoff between subsequent fatal-severity
	// retries until the retry budget's deadline passes.
	SteadyRetryDelay = 1 * time.Second

	// DupKeyIgnoredResult is the sentinel returned by ExecNonQuery when
	// an opted-in primary-key violation was swallowed: another caller
	// already inserted the row, which counts as success.
	DupKeyIgnoredResult = -1
)

// Output parameter names a non-query session command may declare.
// Fixed set, mirroring the session-state stored procedure contracts.
const (
	ParamSessionID        = "SessionId"
	ParamCreated          = "Created"
	ParamExpires          = "Expires"
	ParamLockDate         = "LockDate"
	ParamLockDateLocal    = "LockDateLocal"
	ParamLockCookie       = "LockCookie"
	ParamTimeout          = "Timeout"
	ParamLocked           = "Locked"
	ParamSessionItemShort = "SessionItemShort"
	ParamSessionItemLong  = "SessionItemLong"
	ParamFlags            = "Flags"
	ParamLockAge          = "LockAge"
	ParamActionFlags      = "ActionFlags"
)

var outputParamNames = map[string]struct{}{
	ParamSessionID:        {},
	ParamCreated:          {},
	ParamExpires:          {},
	ParamLockDate:         {},
	ParamLockDateLocal:    {},
	ParamLockCookie:       {},
	ParamTimeout:          {},
	ParamLocked:           {},
	ParamSessionItemShort: {},
	ParamSessionItemLong:  {},
	ParamFlags:            {},
	ParamLockAge:          {},
	ParamActionFlags:      {},
}

// IsOutputParamName reports whether name belongs to the fixed set of
// declarable output parameters.
func IsOutputParamName(name string) bool {
	_, ok := outputParamNames[name]
	return ok
}

// OutputParamNames returns the fixed set of declarable output parameter
// names. The returned slice is a copy.
func OutputParamNames() []string {
	names := make([]string, 0, len(outputParamNames))
	for name := range outputParamNames {
		names = append(names, name)
	}
	return names
}
