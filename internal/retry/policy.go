package retry

import (
	"time"

	"github.com/charles-muller/AspNetSessionState/pkg/sessionstate"
)

// Policy implements sessionstate.RetryPolicy with the two session-state
// backoff regimes.
//
// Thread Safety:
// A Policy is immutable after construction and safe for concurrent use;
// all mutable state lives in the per-loop sessionstate.RetryState.
type Policy struct {
	// budget bounds total fatal-transient retrying. Zero or negative
	// disables fatal-transient retries.
	budget time.Duration

	inMemoryDelay      time.Duration
	firstRetryDelay    time.Duration
	steadyRetryDelay   time.Duration
	maxInMemoryRetries int

	// now is injectable for deterministic deadline tests.
	now func() time.Time
}

// PolicyOption is a functional option for configuring a Policy.
type PolicyOption func(*Policy)

// WithInMemoryDelay sets the busy-retry interval for in-memory conflicts.
func WithInMemoryDelay(d time.Duration) PolicyOption {
	return func(p *Policy) {
		p.inMemoryDelay = d
	}
}

// WithFirstRetryDelay sets the backoff before the first fatal-transient retry.
func WithFirstRetryDelay(d time.Duration) PolicyOption {
	return func(p *Policy) {
		p.firstRetryDelay = d
	}
}

// WithSteadyRetryDelay sets the backoff between subsequent fatal-transient retries.
func WithSteadyRetryDelay(d time.Duration) PolicyOption {
	return func(p *Policy) {
		p.steadyRetryDelay = d
	}
}

// WithMaxInMemoryRetries caps busy-retrying of in-memory conflicts.
func WithMaxInMemoryRetries(n int) PolicyOption {
	return func(p *Policy) {
		p.maxInMemoryRetries = n
	}
}

// WithClock sets a custom time source.
// Tests should set this to a deterministic function.
func WithClock(now func() time.Time) PolicyOption {
	return func(p *Policy) {
		p.now = now
	}
}

// NewPolicy creates a retry policy with the session-state defaults.
// Additional configuration can be provided via functional options.
//
// Example:
//
//	policy := retry.NewPolicy(30*time.Second,
//	    retry.WithSteadyRetryDelay(250*time.Millisecond),
//	)
func NewPolicy(budget time.Duration, opts ...PolicyOption) *Policy {
	p := &Policy{
		budget:             budget,
		inMemoryDelay:      sessionstate.InMemoryRetryDelay,
		firstRetryDelay:    sessionstate.FirstRetryDelay,
		steadyRetryDelay:   sessionstate.SteadyRetryDelay,
		maxInMemoryRetries: sessionstate.MaxInMemoryRetries,
		now:                time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Decide updates state and returns the decision for category.
func (p *Policy) Decide(category sessionstate.FaultCategory, state *sessionstate.RetryState) sessionstate.Decision {
	switch category {
	case sessionstate.FaultInMemoryConflict:
		return p.decideInMemory(state)
	case sessionstate.FaultFatalTransient:
		return p.decideFatalTransient(state)
	default:
		// Login failures, opted-in duplicate keys and unrecognized
		// faults are never retried by this policy.
		return sessionstate.GiveUp
	}
}

func (p *Policy) decideInMemory(state *sessionstate.RetryState) sessionstate.Decision {
	if state.RetryCount >= p.maxInMemoryRetries {
		return sessionstate.GiveUp
	}
	state.RetryCount++
	return sessionstate.Decision{Retry: true, Delay: p.inMemoryDelay}
}

func (p *Policy) decideFatalTransient(state *sessionstate.RetryState) sessionstate.Decision {
	if p.budget <= 0 {
		// No retry budget configured.
		return sessionstate.GiveUp
	}

	if state.FirstAttempt {
		// The budget clock starts after the first, longer backoff:
		// a dropped connection needs time to come back before the
		// steady-state cadence is worth running.
		state.FirstAttempt = false
		state.Deadline = p.now().Add(p.firstRetryDelay + p.budget)
		return sessionstate.Decision{Retry: true, Delay: p.firstRetryDelay}
	}

	if p.now().After(state.Deadline) {
		return sessionstate.GiveUp
	}
	return sessionstate.Decision{Retry: true, Delay: p.steadyRetryDelay}
}
