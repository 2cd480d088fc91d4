package sqlcmd

import (
	"context"
	"errors"
)

// mockResult reports a fixed affected-row count.
type mockResult struct {
	rows int64
	err  error
}

func (m *mockResult) RowsAffected() (int64, error) {
	return m.rows, m.err
}

// mockRows is a canned forward cursor.
type mockRows struct {
	values [][]any
	pos    int
	closed bool
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

func (m *mockRows) Err() error { return nil }

func (m *mockRows) Close() error {
	m.closed = true
	return nil
}

// mockConn scripts command failures: the first failCount calls fail
// with the scripted error, later calls succeed.
type mockConn struct {
	execCalls  int
	queryCalls int
	closeCalls int
	failCount  int
	execErr    error
	rows       int64
	queryRows  *mockRows
	writeOut   map[string]any
}

func (m *mockConn) ExecContext(_ context.Context, _ string, args ...any) (Result, error) {
	m.execCalls++
	if m.execCalls <= m.failCount {
		return nil, m.execErr
	}
	if m.writeOut != nil {
		writeOutputParams(args, m.writeOut)
	}
	return &mockResult{rows: m.rows}, nil
}

func (m *mockConn) QueryContext(_ context.Context, _ string, _ ...any) (Rows, error) {
	m.queryCalls++
	if m.queryCalls <= m.failCount {
		return nil, m.execErr
	}
	if m.queryRows == nil {
		m.queryRows = &mockRows{}
	}
	return m.queryRows, nil
}

func (m *mockConn) Close() error {
	m.closeCalls++
	return nil
}

// mockOpener hands out conns, optionally failing the first openFailures
// attempts with openErr.
type mockOpener struct {
	conn         *mockConn
	openErr      error
	openFailures int
	openCalls    int
	identity     string
}

func (m *mockOpener) Open(_ context.Context) (Conn, error) {
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
