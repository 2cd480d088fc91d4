package sqlcmd

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/charles-muller/AspNetSessionState/pkg/sessionstate"
)

// ReadBehavior hints how a reader-shaped command's results are consumed.
type ReadBehavior int

const (
	// ReadDefault streams all result rows.
	ReadDefault ReadBehavior = iota

	// ReadSingleRow expects at most one row; the cursor stops after it.
	ReadSingleRow

	// ReadSequential marks column-by-column streaming access. Row data
	// is already streamed by the driver, so this is advisory.
	ReadSequential
)

// errDupKeyIgnored signals internally that an opted-in primary-key
// violation was swallowed. Never escapes the package.
var errDupKeyIgnored = errors.New("duplicate key ignored")

// Invocation binds one command definition to one owned connection and
// executes it with transparent retries on transient faults.
//
// An Invocation represents a single in-flight logical operation and is
// not safe for concurrent use. Callers must Close it on every exit path:
//
//	inv := sqlcmd.NewInvocation(opener, classifier, policy, query,
//	    sqlcmd.WithArgs(sql.Named("id", id)),
//	    sqlcmd.WithOutputParams(sessionstate.ParamLocked, sessionstate.ParamLockCookie),
//	)
//	defer inv.Close()
type Invocation struct {
	text  string
	args  []any
	out   map[string]*outParam
	owner *ConnOwner

	classifier sessionstate.FaultClassifier
	policy     sessionstate.RetryPolicy
	log        zerolog.Logger
}

// InvocationOption is a functional option for configuring an Invocation.
type InvocationOption func(*Invocation)

// WithArgs sets the command's input arguments.
func WithArgs(args ...any) InvocationOption {
	return func(inv *Invocation) {
		inv.args = args
	}
}

// WithOutputParams declares the named output parameters to bind.
// Names outside the fixed declarable set are ignored at construction
// and surface as ErrUnknownOutputParam on retrieval.
func WithOutputParams(names ...string) InvocationOption {
	return func(inv *Invocation) {
		for _, name := range names {
			if sessionstate.IsOutputParamName(name) {
				inv.out[name] = &outParam{}
			}
		}
	}
}

// WithLogger sets the logger for retry diagnostics.
func WithLogger(log zerolog.Logger) InvocationOption {
	return func(inv *Invocation) {
		inv.log = log
	}
}

// NewInvocation creates an invocation for the given command text.
// Panics if classifier or policy is nil, mirroring executor construction
// elsewhere: these are wiring mistakes, not runtime conditions.
func NewInvocation(
	opener Opener,
	classifier sessionstate.FaultClassifier,
	policy sessionstate.RetryPolicy,
	text string,
	opts ...InvocationOption,
) *Invocation {
	if opener == nil {
		panic("opener cannot be nil")
	}
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if policy == nil {
		panic("policy cannot be nil")
	}

	inv := &Invocation{
		text:       text,
		out:        make(map[string]*outParam),
		owner:      NewConnOwner(opener),
		classifier: classifier,
		policy:     policy,
		log:        zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(inv)
	}

	return inv
}

// Close releases the owned connection. Safe to call multiple times.
func (inv *Invocation) Close() error {
	return inv.owner.Release()
}

// ExecNonQuery executes the command and returns the affected-row count.
// When ignoreDupKey is set and the command fails with a primary-key
// violation, it returns sessionstate.DupKeyIgnoredResult (-1) and no
// error: another caller won the race to insert the row.
func (inv *Invocation) ExecNonQuery(ctx context.Context, ignoreDupKey bool) (int64, error) {
	var rows int64
	err := inv.execute(ctx, ignoreDupKey, func(ctx context.Context, conn Conn) error {
		res, err := conn.ExecContext(ctx, inv.text, buildArgs(inv.args, inv.out)...)
		if err != nil {
			return err
		}
		rows, err = res.RowsAffected()
		return err
	})
	if errors.Is(err, errDupKeyIgnored) {
		inv.log.Debug().Str("command", inv.text).Msg("duplicate key ignored, row already present")
		return sessionstate.DupKeyIgnoredResult, nil
	}
	if err != nil {
		return 0, err
	}
	return rows, nil
}

// Query executes the command and returns a forward cursor over its
// result rows per the requested read behavior. The cursor is only valid
// until the invocation is closed.
func (inv *Invocation) Query(ctx context.Context, behavior ReadBehavior) (Rows, error) {
	var rows Rows
	// Reader-shaped commands never opt in to duplicate-key ignoring;
	// inserts go through ExecNonQuery.
	err := inv.execute(ctx, false, func(ctx context.Context, conn Conn) error {
		var err error
		rows, err = conn.QueryContext(ctx, inv.text, buildArgs(inv.args, inv.out)...)
		return err
	})
	if err != nil {
		return nil, err
	}
	if behavior == ReadSingleRow {
		return &singleRow{rows: rows}, nil
	}
	return rows, nil
}

// execute runs the shared open -> run -> classify -> retry-or-fail loop.
// The original fault is what propagates once retries are exhausted.
func (inv *Invocation) execute(ctx context.Context, ignoreDupKey bool, run func(context.Context, Conn) error) error {
	state := sessionstate.NewRetryState()

	for {
		conn, err := inv.owner.EnsureOpen(ctx)
		if err != nil {
			return inv.openFailure(err)
		}

		err = run(ctx, conn)
		if err == nil {
			return nil
		}

		category := inv.classifier.Classify(err, ignoreDupKey)
		if category == sessionstate.FaultIgnorableDuplicateKey {
			return errDupKeyIgnored
		}

		decision := inv.policy.Decide(category, state)
		if !decision.Retry {
			return err
		}

		if category == sessionstate.FaultFatalTransient {
			// The server dropped the connection; reopen on the
			// next iteration instead of reusing a dead handle.
			inv.owner.Reset()
		}

		inv.log.Warn().
			Err(err).
			Stringer("category", category).
			Int("retry_count", state.RetryCount).
			Dur("delay", decision.Delay).
			Msg("retrying session command")

		if err := sleep(ctx, decision.Delay); err != nil {
			return err
		}
	}
}

// openFailure wraps a connection-open error. Login failures carry the
// attempted identity; everything else keeps the raw cause. Both bypass
// the retry loop and release the connection before surfacing.
func (inv *Invocation) openFailure(err error) error {
	if errors.Is(err, sessionstate.ErrInvocationClosed) {
		return err
	}

	connErr := &sessionstate.ConnectivityError{Err: err}
	if inv.classifier.Classify(err, false) == sessionstate.FaultLoginFailure {
		connErr.Identity = inv.owner.Identity()
	}
	_ = inv.owner.Release()
	return connErr
}

// sleep waits for d or until ctx is cancelled, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// singleRow caps a cursor at one row for ReadSingleRow commands.
type singleRow struct {
	rows Rows
	done bool
}

func (s *singleRow) Next() bool {
	if s.done {
		return false
	}
	s.done = true
	return s.rows.Next()
}

func (s *singleRow) Scan(dest ...any) error { return s.rows.Scan(dest...) }
func (s *singleRow) Err() error             { return s.rows.Err() }
func (s *singleRow) Close() error           { return s.rows.Close() }
