package retry

import (
	"database/sql/driver"
	"errors"
	"net"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/charles-muller/AspNetSessionState/pkg/sessionstate"
)

// SQL Server error numbers relevant to session-state commands.
// See: https://learn.microsoft.com/sql/relational-databases/errors-events/
const (
	// Violation of PRIMARY KEY constraint. Ignorable when two callers
	// race to insert the same session row.
	sqlPrimaryKeyViolation = 2627

	// Memory-optimized table conflicts, all resolved by short-delay retry.
	sqlInMemoryDependencyFailure = 41301 // commit dependency on aborted transaction
	sqlInMemoryWriteConflict     = 41302 // row updated by a concurrent transaction
	sqlInMemoryRepeatableRead    = 41305 // repeatable read validation failure
	sqlInMemorySerialization     = 41325 // serializable validation failure
	sqlInMemoryQuiescing         = 41839 // dependency limit on quiescing database

	// Server-side conditions after which the connection is assumed dead.
	sqlCannotOpenDatabase = 4060 // cannot open database requested by the login
	sqlTimeoutExpired     = -2   // client-reported timeout expired

	// Login failures, never retried.
	sqlLoginFailed          = 18456
	sqlLoginFailedUntrusted = 18452
	sqlLoginFailedNow       = 18450

	// Severity class at or above which SQL Server terminates the
	// connection unilaterally.
	fatalSeverityClass = 20
)

var inMemoryConflictNumbers = map[int32]struct{}{
	sqlInMemoryDependencyFailure: {},
	sqlInMemoryWriteConflict:     {},
	sqlInMemoryRepeatableRead:    {},
	sqlInMemorySerialization:     {},
	sqlInMemoryQuiescing:         {},
}

var loginFailureNumbers = map[int32]struct{}{
	sqlLoginFailed:          {},
	sqlLoginFailedUntrusted: {},
	sqlLoginFailedNow:       {},
}

// SQLServerFaultClassifier implements sessionstate.FaultClassifier for
// SQL Server driver errors.
type SQLServerFaultClassifier struct{}

// NewSQLServerFaultClassifier creates a new SQL Server fault classifier.
func NewSQLServerFaultClassifier() *SQLServerFaultClassifier {
	return &SQLServerFaultClassifier{}
}

// Classify maps err to a fault category. Rules apply in precedence
// order: opted-in duplicate key, in-memory conflict, fatal-severity or
// dropped-connection conditions, login failure, then non-retryable.
func (c *SQLServerFaultClassifier) Classify(err error, ignoreDupKey bool) sessionstate.FaultCategory {
	if err == nil {
		return sessionstate.FaultNonRetryable
	}

	var sqlErr mssql.Error
	if errors.As(err, &sqlErr) {
		return classifySQLError(sqlErr, ignoreDupKey)
	}

	// database/sql reports a connection the pool should discard with
	// ErrBadConn; treat it like a server-dropped connection.
	if errors.Is(err, driver.ErrBadConn) {
		return sessionstate.FaultFatalTransient
	}

	// Network timeouts leave the session in an unknown server-side
	// state, same as a client-reported command timeout.
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return sessionstate.FaultFatalTransient
	}

	return sessionstate.FaultNonRetryable
}

func classifySQLError(sqlErr mssql.Error, ignoreDupKey bool) sessionstate.FaultCategory {
	number := sqlErr.SQLErrorNumber()

	if number == sqlPrimaryKeyViolation && ignoreDupKey {
		return sessionstate.FaultIgnorableDuplicateKey
	}

	if _, ok := inMemoryConflictNumbers[number]; ok {
		return sessionstate.FaultInMemoryConflict
	}

	if sqlErr.SQLErrorClass() >= fatalSeverityClass ||
		number == sqlCannotOpenDatabase ||
		number == sqlTimeoutExpired {
		return sessionstate.FaultFatalTransient
	}

	if _, ok := loginFailureNumbers[number]; ok {
		return sessionstate.FaultLoginFailure
	}

	return sessionstate.FaultNonRetryable
}
