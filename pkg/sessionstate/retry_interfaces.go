package sessionstate

import "time"

// FaultClassifier maps a driver-reported failure into a FaultCategory.
// Implementations must be pure: no side effects, no internal state.
type FaultClassifier interface {
	// Classify inspects err and returns its fault category.
	// ignoreDupKey indicates the caller opted in to treating a
	// primary-key violation as an ignorable insert race.
	Classify(err error, ignoreDupKey bool) FaultCategory
}

// Decision is the outcome of a single retry-policy consultation.
type Decision struct {
	// Retry is true when the operation should be attempted again
	// after waiting Delay. When false the original fault propagates.
	Retry bool

	// Delay is how long to wait before the next attempt.
	// Zero when Retry is false.
	Delay time.Duration
}

// GiveUp is the terminal decision: no further attempts.
var GiveUp = Decision{}

// RetryState is the mutable state of one retry loop. It is created
// fresh per loop entry and must never be shared across invocations.
type RetryState struct {
	// FirstAttempt is true until the policy has handled the first
	// fatal-transient fault of this loop.
	FirstAttempt bool

	// Deadline bounds fatal-transient retrying. Zero until the first
	// fatal-transient fault starts the budget clock.
	Deadline time.Time

	// RetryCount counts in-memory-conflict retries decided so far.
	RetryCount int
}

// NewRetryState returns the initial state for a retry loop.
func NewRetryState() *RetryState {
	return &RetryState{FirstAttempt: true}
}

// RetryPolicy decides whether a classified fault is worth another attempt.
type RetryPolicy interface {
	// Decide updates state and returns the decision for the given
	// fault category. Categories the policy never retries
	// (login failures, non-retryable faults) always yield GiveUp.
	Decide(category FaultCategory, state *RetryState) Decision
}
