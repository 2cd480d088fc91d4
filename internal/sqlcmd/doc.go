// Package sqlcmd executes session database commands over a single owned
// connection, retrying transparently when a failure classifies as
// transient.
//
// An Invocation binds one command definition (text, input parameters,
// declared output parameters) to one dedicated connection for its whole
// lifetime. The connection is acquired lazily, reset when the server is
// assumed to have dropped it, and released on every exit path through
// Close. Backoff waits are cancellable through the caller's context.
package sqlcmd
