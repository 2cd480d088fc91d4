// Package retry implements fault classification and retry decisions for
// session database commands.
//
// Two independent backoff regimes exist. Conflicts on memory-optimized
// tables resolve within microseconds, so they are busy-retried on a
// millisecond interval with a fixed attempt cap. Fatal-severity faults
// mean the server dropped the connection, so they back off on a second
// scale bounded by an operator-configured retry budget.
//
// The classifier is pure; all mutable loop state lives in
// sessionstate.RetryState, created fresh per retry loop.
package retry
