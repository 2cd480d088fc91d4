package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/charles-muller/AspNetSessionState/internal/sqlcmd"
)

type mockResult struct {
	rows int64
}

func (m *mockResult) RowsAffected() (int64, error) {
	return m.rows, nil
}

type mockRows struct {
	values [][]any
	pos    int
}

func (m *mockRows) Next() bool {
	if m.pos >= len(m.values) {
		return false
	}
	m.pos++
	return true
}

func (m *mockRows) Scan(dest ...any) error {
	if m.pos == 0 || m.pos > len(m.values) {
		return errors.New("scan without next")
	}
	row := m.values[m.pos-1]
	for i := range dest {
		if i < len(row) {
			if p, ok := dest[i].(*any); ok {
				*p = row[i]
			}
		}
	}
	return nil
}

func (m *mockRows) Err() error   { return nil }
func (m *mockRows) Close() error { return nil }

// mockConn scripts failures for the first failCount calls, then
// succeeds, optionally writing scripted output-parameter values.
type mockConn struct {
	execCalls  int
	queryCalls int
	failCount  int
	execErr    error
	rows       int64
	queryRows  *mockRows
	writeOut   map[string]any
	lastArgs   []any
}

func (m *mockConn) ExecContext(_ context.Context, _ string, args ...any) (sqlcmd.Result, error) {
	m.execCalls++
	m.lastArgs = args
	if m.execCalls <= m.failCount {
		return nil, m.execErr
	}
	for _, arg := range args {
		named, ok := arg.(sql.NamedArg)
		if !ok {
			continue
		}
		out, ok := named.Value.(sql.Out)
		if !ok {
			continue
		}
		if v, ok := m.writeOut[named.Name]; ok {
			if dest, ok := out.Dest.(*any); ok {
				*dest = v
			}
		}
	}
	return &mockResult{rows: m.rows}, nil
}

func (m *mockConn) QueryContext(_ context.Context, _ string, args ...any) (sqlcmd.Rows, error) {
	m.queryCalls++
	m.lastArgs = args
	if m.queryCalls <= m.failCount {
		return nil, m.execErr
	}
	if m.queryRows == nil {
		m.queryRows = &mockRows{}
	}
	return m.queryRows, nil
}

func (m *mockConn) Close() error { return nil }

type mockOpener struct {
	conn         *mockConn
	openErr      error
	openFailures int
	openCalls    int
	identity     string
}

func (m *mockOpener) Open(_ context.Context) (sqlcmd.Conn, error) {
	m.openCalls++
	if m.openCalls <= m.openFailures {
		return nil, m.openErr
	}
	if m.conn == nil {
		m.conn = &mockConn{}
	}
	return m.conn, nil
}

func (m *mockOpener) Identity() string {
	return m.identity
}
