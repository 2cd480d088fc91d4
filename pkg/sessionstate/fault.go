package sessionstate

// FaultCategory classifies a driver-reported failure for retry handling.
type FaultCategory int

const (
	// FaultNonRetryable covers every failure the retry layer does not
	// recognize; it is surfaced to the caller unchanged.
	FaultNonRetryable FaultCategory = iota

	// FaultInMemoryConflict is an optimistic-concurrency failure on a
	// memory-optimized table. These resolve within microseconds, so a
	// short bounded busy-retry is appropriate.
	FaultInMemoryConflict

	// FaultFatalTransient indicates the server has dropped the connection
	// (severity class >= 20, database unavailable, or command timeout).
	// Retried on a second-scale backoff bounded by the configured budget.
	FaultFatalTransient

	// FaultLoginFailure is an authentication failure. Never retried;
	// surfaced as a ConnectivityError carrying the attempted identity.
	FaultLoginFailure

	// FaultIgnorableDuplicateKey is a primary-key violation the caller
	// opted to ignore: two callers raced to insert the same row and the
	// other one won. Mapped to a sentinel result, not an error.
	FaultIgnorableDuplicateKey
)

// String returns a human-readable name for logging.
func (c FaultCategory) String() string {
	switch c {
	case FaultNonRetryable:
		return "non_retryable"
	case FaultInMemoryConflict:
		return "in_memory_conflict"
	case FaultFatalTransient:
		return "fatal_transient"
	case FaultLoginFailure:
		return "login_failure"
	case FaultIgnorableDuplicateKey:
		return "ignorable_duplicate_key"
	default:
		return "unknown"
	}
}
