package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charles-muller/AspNetSessionState/internal/retry"
	"github.com/charles-muller/AspNetSessionState/pkg/sessionstate"
)

func newTestRepository(opener *mockOpener) *Repository {
	return NewRepository(
		opener,
		retry.NewSQLServerFaultClassifier(),
		retry.NewPolicy(0, retry.WithInMemoryDelay(time.Microsecond)),
		zerolog.Nop(),
	)
}

func TestRepository_CreateUninitializedItem_WinsRace(t *testing.T) {
	opener := &mockOpener{conn: &mockConn{rows: 1}}
	repo := newTestRepository(opener)

	result, err := repo.CreateUninitializedItem(context.Background(), "abc123", 20*time.Minute)

	require.NoError(t, err)
	assert.Equal(t, Created, result)
}

func TestRepository_CreateUninitializedItem_LosesRace(t *testing.T) {
	dupKey := mssql.Error{Number: 2627, Class: 14, Message: "Violation of PRIMARY KEY constraint"}
	opener := &mockOpener{conn: &mockConn{failCount: 1, execErr: dupKey}}
	repo := newTestRepository(opener)

	result, err := repo.CreateUninitializedItem(context.Background(), "abc123", 20*time.Minute)

	require.NoError(t, err, "losing the insert race is not an error")
	assert.Equal(t, AlreadyExists, result)
}

func TestRepository_InsertItem_DuplicateIsAnError(t *testing.T) {
	// Plain inserts do not opt in to duplicate-key ignoring.
	dupKey := mssql.Error{Number: 2627, Class: 14, Message: "Violation of PRIMARY KEY constraint"}
	opener := &mockOpener{conn: &mockConn{failCount: 1, execErr: dupKey}}
	repo := newTestRepository(opener)

	err := repo.InsertItem(context.Background(), &SessionItem{ID: "abc123", Timeout: 20})

	require.Error(t, err)
	var sqlErr mssql.Error
	require.ErrorAs(t, err, &sqlErr)
	assert.Equal(t, int32(2627), sqlErr.Number)
}

func TestRepository_GetItemExclusive_ReadsOutputParams(t *testing.T) {
	opener := &mockOpener{conn: &mockConn{
		rows: 1,
		writeOut: map[string]any{
			sessionstate.ParamLocked:           true,
			sessionstate.ParamLockAge:          int64(12),
			sessionstate.ParamLockCookie:       int64(3),
			sessionstate.ParamTimeout:          int64(20),
			sessionstate.ParamActionFlags:      int64(1),
			sessionstate.ParamSessionItemShort: []byte("payload"),
		},
	}}
	repo := newTestRepository(opener)

	item, err := repo.GetItemExclusive(context.Background(), "abc123")

	require.NoError(t, err)
	assert.Equal(t, "abc123", item.ID)
	assert.True(t, item.Locked)
	assert.Equal(t, 12*time.Second, item.LockAge)
	assert.Equal(t, int64(3), item.LockCookie)
	assert.Equal(t, int64(20), item.Timeout)
	assert.Equal(t, int64(1), item.ActionFlags)
	assert.Equal(t, []byte("payload"), item.Item)
}

func TestRepository_GetItem_LongPayload(t *testing.T) {
	// Oversized payloads land in the long parameter; the short one
	// stays NULL.
	long := make([]byte, 16*1024)
	for i := range long {
		long[i] = byte(i)
	}
	opener := &mockOpener{conn: &mockConn{
		rows: 1,
		writeOut: map[string]any{
			sessionstate.ParamTimeout:         int64(20),
			sessionstate.ParamSessionItemLong: long,
		},
	}}
	repo := newTestRepository(opener)

	item, err := repo.GetItem(context.Background(), "abc123")

	require.NoError(t, err)
	assert.Equal(t, long, item.Item)
	assert.False(t, item.Locked)
}

func TestRepository_GetItem_ShortPayloadWinsOverLong(t *testing.T) {
	opener := &mockOpener{conn: &mockConn{
		rows: 1,
		writeOut: map[string]any{
			sessionstate.ParamSessionItemShort: []byte("short"),
		},
	}}
	repo := newTestRepository(opener)

	item, err := repo.GetItem(context.Background(), "abc123")

	require.NoError(t, err)
	assert.Equal(t, []byte("short"), item.Item)
}

func TestRepository_GetItem_NullOutputsForMissingSession(t *testing.T) {
	// The procedure leaves output parameters NULL for unknown sessions.
	opener := &mockOpener{conn: &mockConn{rows: 0}}
	repo := newTestRepository(opener)

	item, err := repo.GetItem(context.Background(), "missing")

	require.NoError(t, err)
	assert.False(t, item.Locked)
	assert.Zero(t, item.LockCookie)
	assert.Nil(t, item.Item)
}

func TestRepository_DeleteExpiredSessions(t *testing.T) {
	opener := &mockOpener{conn: &mockConn{rows: 17}}
	repo := newTestRepository(opener)

	n, err := repo.DeleteExpiredSessions(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(17), n)
}

func TestRepository_RemoveItem_PassesLockCookie(t *testing.T) {
	opener := &mockOpener{conn: &mockConn{rows: 1}}
	repo := newTestRepository(opener)

	err := repo.RemoveItem(context.Background(), "abc123", 7)

	require.NoError(t, err)
	require.Len(t, opener.conn.lastArgs, 2)
	named, ok := opener.conn.lastArgs[1].(sql.NamedArg)
	require.True(t, ok)
	assert.Equal(t, "lockCookie", named.Name)
	assert.Equal(t, int64(7), named.Value)
}

func TestRepository_Ping(t *testing.T) {
	opener := &mockOpener{conn: &mockConn{
		queryRows: &mockRows{values: [][]any{{int64(1)}}},
	}}
	repo := newTestRepository(opener)

	require.NoError(t, repo.Ping(context.Background()))
	assert.Equal(t, 1, opener.conn.queryCalls)
}

func TestRepository_ConnectivityErrorSurfaces(t *testing.T) {
	loginErr := mssql.Error{Number: 18456, Class: 14, Message: "Login failed for user 'sessionUser'"}
	opener := &mockOpener{openErr: loginErr, openFailures: 1000, identity: "sessionUser"}
	repo := newTestRepository(opener)

	err := repo.ResetItemTimeout(context.Background(), "abc123")

	require.Error(t, err)
	var connErr *sessionstate.ConnectivityError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "sessionUser", connErr.Identity)
}
