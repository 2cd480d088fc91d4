package retry

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/charles-muller/AspNetSessionState/pkg/sessionstate"
)

func sqlError(number int32, class uint8) mssql.Error {
	return mssql.Error{
		Number:  number,
		Class:   class,
		Message: fmt.Sprintf("sql error %d", number),
	}
}

func TestSQLServerFaultClassifier_InMemoryConflicts(t *testing.T) {
	classifier := NewSQLServerFaultClassifier()

	// Every code in the in-memory conflict set classifies the same
	// regardless of severity.
	numbers := []int32{41301, 41302, 41305, 41325, 41839}
	classes := []uint8{0, 16, 20, 24}

	for _, number := range numbers {
		for _, class := range classes {
			name := fmt.Sprintf("number_%d_class_%d", number, class)
			t.Run(name, func(t *testing.T) {
				got := classifier.Classify(sqlError(number, class), false)
				if got != sessionstate.FaultInMemoryConflict {
					t.Errorf("Classify(%d, class %d) = %v, want FaultInMemoryConflict", number, class, got)
				}
			})
		}
	}
}

func TestSQLServerFaultClassifier_FatalTransient(t *testing.T) {
	classifier := NewSQLServerFaultClassifier()

	tests := []struct {
		name string
		err  error
	}{
		{"severity_20", sqlError(50000, 20)},
		{"severity_24", sqlError(823, 24)},
		{"cannot_open_database (4060)", sqlError(4060, 11)},
		{"timeout_expired (-2)", sqlError(-2, 11)},
		{"driver_bad_conn", driver.ErrBadConn},
		{"wrapped_bad_conn", fmt.Errorf("exec: %w", driver.ErrBadConn)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.err, false)
			if got != sessionstate.FaultFatalTransient {
				t.Errorf("Classify(%v) = %v, want FaultFatalTransient", tt.err, got)
			}
		})
	}
}

func TestSQLServerFaultClassifier_LoginFailures(t *testing.T) {
	classifier := NewSQLServerFaultClassifier()

	for _, number := range []int32{18456, 18452, 18450} {
		t.Run(fmt.Sprintf("number_%d", number), func(t *testing.T) {
			got := classifier.Classify(sqlError(number, 14), false)
			if got != sessionstate.FaultLoginFailure {
				t.Errorf("Classify(%d) = %v, want FaultLoginFailure", number, got)
			}
		})
	}
}

func TestSQLServerFaultClassifier_DuplicateKey(t *testing.T) {
	classifier := NewSQLServerFaultClassifier()
	dupKey := sqlError(2627, 14)

	if got := classifier.Classify(dupKey, true); got != sessionstate.FaultIgnorableDuplicateKey {
		t.Errorf("Classify(2627, ignoreDupKey=true) = %v, want FaultIgnorableDuplicateKey", got)
	}

	// Without the caller opting in a duplicate key is an ordinary
	// command failure.
	if got := classifier.Classify(dupKey, false); got != sessionstate.FaultNonRetryable {
		t.Errorf("Classify(2627, ignoreDupKey=false) = %v, want FaultNonRetryable", got)
	}
}

func TestSQLServerFaultClassifier_NonRetryable(t *testing.T) {
	classifier := NewSQLServerFaultClassifier()

	tests := []struct {
		name string
		err  error
	}{
		{"nil", nil},
		{"constraint_violation (547)", sqlError(547, 16)},
		{"syntax_error (102)", sqlError(102, 15)},
		{"permission_denied (229)", sqlError(229, 14)},
		{"plain_error", errors.New("something else went wrong")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.err, true)
			if got != sessionstate.FaultNonRetryable {
				t.Errorf("Classify(%v) = %v, want FaultNonRetryable", tt.err, got)
			}
		})
	}
}

func TestSQLServerFaultClassifier_WrappedSQLError(t *testing.T) {
	classifier := NewSQLServerFaultClassifier()

	// Classification must see through fmt.Errorf %w chains.
	wrapped := fmt.Errorf("exec GetStateItemExclusive: %w", sqlError(41302, 16))
	if got := classifier.Classify(wrapped, false); got != sessionstate.FaultInMemoryConflict {
		t.Errorf("Classify(wrapped 41302) = %v, want FaultInMemoryConflict", got)
	}
}
