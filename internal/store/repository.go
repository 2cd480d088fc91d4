package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/charles-muller/AspNetSessionState/internal/sqlcmd"
	"github.com/charles-muller/AspNetSessionState/pkg/sessionstate"
)

// Repository executes session-state stored procedures through the
// resilient command layer. Each public method is one logical database
// operation: it binds a fresh invocation to one owned connection and
// releases it on every exit path.
//
// Thread Safety:
// A Repository is safe for concurrent use; every call builds its own
// invocation. The invocations themselves are single-caller.
type Repository struct {
	opener     sqlcmd.Opener
	classifier sessionstate.FaultClassifier
	policy     sessionstate.RetryPolicy
	log        zerolog.Logger
}

// NewRepository creates a repository with all dependencies injected.
// Panics if any dependency is nil: these are wiring mistakes, not
// runtime conditions.
func NewRepository(
	opener sqlcmd.Opener,
	classifier sessionstate.FaultClassifier,
	policy sessionstate.RetryPolicy,
	log zerolog.Logger,
) *Repository {
	if opener == nil {
		panic("opener cannot be nil")
	}
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if policy == nil {
		panic("policy cannot be nil")
	}

	return &Repository{
		opener:     opener,
		classifier: classifier,
		policy:     policy,
		log:        log,
	}
}

func (r *Repository) invoke(text string, opts ...sqlcmd.InvocationOption) *sqlcmd.Invocation {
	opts = append(opts, sqlcmd.WithLogger(r.log))
	return sqlcmd.NewInvocation(r.opener, r.classifier, r.policy, text, opts...)
}

// Ping verifies end-to-end connectivity through the command layer.
func (r *Repository) Ping(ctx context.Context) error {
	inv := r.invoke(queryPing)
	defer inv.Close()

	rows, err := inv.Query(ctx, sqlcmd.ReadSingleRow)
	if err != nil {
		return err
	}
	return rows.Close()
}

// GetItem fetches a session item without locking it.
func (r *Repository) GetItem(ctx context.Context, id string) (*SessionItem, error) {
	return r.getItem(ctx, procGetStateItem, id)
}

// GetItemExclusive fetches a session item and takes the request lock.
// When the item is already locked the returned item carries Locked,
// LockAge and LockCookie instead of the payload.
func (r *Repository) GetItemExclusive(ctx context.Context, id string) (*SessionItem, error) {
	return r.getItem(ctx, procGetStateItemExclusive, id)
}

func (r *Repository) getItem(ctx context.Context, proc string, id string) (*SessionItem, error) {
	inv := r.invoke(proc,
		sqlcmd.WithArgs(sql.Named("id", id)),
		sqlcmd.WithOutputParams(
			sessionstate.ParamLocked,
			sessionstate.ParamLockAge,
			sessionstate.ParamLockCookie,
			sessionstate.ParamTimeout,
			sessionstate.ParamActionFlags,
			sessionstate.ParamSessionItemShort,
			sessionstate.ParamSessionItemLong,
		),
	)
	defer inv.Close()

	if _, err := inv.ExecNonQuery(ctx, false); err != nil {
		return nil, fmt.Errorf("get state item %q: %w", id, err)
	}

	item := &SessionItem{ID: id}
	var err error
	if item.Locked, err = inv.OutBool(sessionstate.ParamLocked); err != nil {
		return nil, err
	}
	lockAgeSeconds, err := inv.OutInt64(sessionstate.ParamLockAge)
	if err != nil {
		return nil, err
	}
	item.LockAge = time.Duration(lockAgeSeconds) * time.Second
	if item.LockCookie, err = inv.OutInt64(sessionstate.ParamLockCookie); err != nil {
		return nil, err
	}
	if item.Timeout, err = inv.OutInt64(sessionstate.ParamTimeout); err != nil {
		return nil, err
	}
	if item.ActionFlags, err = inv.OutInt64(sessionstate.ParamActionFlags); err != nil {
		return nil, err
	}
	if item.Item, err = inv.OutBytes(sessionstate.ParamSessionItemShort); err != nil {
		return nil, err
	}
	if item.Item == nil {
		// Payloads over the short-column limit land in the long
		// parameter instead; the procedures fill exactly one of the two.
		if item.Item, err = inv.OutBytes(sessionstate.ParamSessionItemLong); err != nil {
			return nil, err
		}
	}
	return item, nil
}

// CreateUninitializedItem inserts a fresh cookieless-session row if
// absent. Two requests can race to create the same session; the loser's
// duplicate-key violation is swallowed and reported as AlreadyExists.
func (r *Repository) CreateUninitializedItem(ctx context.Context, id string, timeout time.Duration) (CreateResult, error) {
	inv := r.invoke(procInsertUninitializedItem,
		sqlcmd.WithArgs(
			sql.Named("id", id),
			sql.Named("timeout", int64(timeout/time.Minute)),
		),
	)
	defer inv.Close()

	n, err := inv.ExecNonQuery(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("insert uninitialized item %q: %w", id, err)
	}
	if n == sessionstate.DupKeyIgnoredResult {
		return AlreadyExists, nil
	}
	return Created, nil
}

// InsertItem creates a session row with its serialized payload.
func (r *Repository) InsertItem(ctx context.Context, item *SessionItem) error {
	inv := r.invoke(procInsertStateItem,
		sqlcmd.WithArgs(
			sql.Named("id", item.ID),
			sql.Named("itemShort", item.Item),
			sql.Named("timeout", item.Timeout),
		),
	)
	defer inv.Close()

	if _, err := inv.ExecNonQuery(ctx, false); err != nil {
		return fmt.Errorf("insert state item %q: %w", item.ID, err)
	}
	return nil
}

// UpdateItem stores a session payload and releases the request lock.
func (r *Repository) UpdateItem(ctx context.Context, item *SessionItem) error {
	inv := r.invoke(procUpdateStateItem,
		sqlcmd.WithArgs(
			sql.Named("id", item.ID),
			sql.Named("itemShort", item.Item),
			sql.Named("timeout", item.Timeout),
			sql.Named("lockCookie", item.LockCookie),
		),
	)
	defer inv.Close()

	if _, err := inv.ExecNonQuery(ctx, false); err != nil {
		return fmt.Errorf("update state item %q: %w", item.ID, err)
	}
	return nil
}

// ReleaseItemExclusive releases the request lock without writing.
func (r *Repository) ReleaseItemExclusive(ctx context.Context, id string, lockCookie int64) error {
	inv := r.invoke(procReleaseItemExclusive,
		sqlcmd.WithArgs(
			sql.Named("id", id),
			sql.Named("lockCookie", lockCookie),
		),
	)
	defer inv.Close()

	if _, err := inv.ExecNonQuery(ctx, false); err != nil {
		return fmt.Errorf("release item %q: %w", id, err)
	}
	return nil
}

// RemoveItem deletes a session row, honoring the lock cookie.
func (r *Repository) RemoveItem(ctx context.Context, id string, lockCookie int64) error {
	inv := r.invoke(procRemoveStateItem,
		sqlcmd.WithArgs(
			sql.Named("id", id),
			sql.Named("lockCookie", lockCookie),
		),
	)
	defer inv.Close()

	if _, err := inv.ExecNonQuery(ctx, false); err != nil {
		return fmt.Errorf("remove state item %q: %w", id, err)
	}
	return nil
}

// ResetItemTimeout slides the session expiry forward.
func (r *Repository) ResetItemTimeout(ctx context.Context, id string) error {
	inv := r.invoke(procResetItemTimeout,
		sqlcmd.WithArgs(sql.Named("id", id)),
	)
	defer inv.Close()

	if _, err := inv.ExecNonQuery(ctx, false); err != nil {
		return fmt.Errorf("reset item timeout %q: %w", id, err)
	}
	return nil
}

// DeleteExpiredSessions removes rows past their expiry and returns how
// many were deleted. Run periodically by the operator (see the purge
// CLI command).
func (r *Repository) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	inv := r.invoke(procDeleteExpiredSessions)
	defer inv.Close()

	n, err := inv.ExecNonQuery(ctx, false)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return n, nil
}
