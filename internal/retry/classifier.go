package retry

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// PostgreSQL error codes for transient conditions
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"
	pgCodeLockNotAvailable     = "55P03"
)

// MySQL server error numbers for transient conditions
// See: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	mysqlErrConCount          = 1040 // Too many connections
	mysqlErrServerShutdown    = 1053 // Server shutdown in progress
	mysqlErrLockWaitTimeout   = 1205
	mysqlErrLockDeadlock      = 1213
	mysqlErrUserLimitReached  = 1226 // max_user_connections and friends
	mysqlErrServerIsntRunning = 1836 // Running in read-only mode during startup
)

// SQLErrorClassifier implements ErrorClassifier for the supported drivers.
// Connection-level, resource and lock contention errors are transient;
// authentication, missing database and statement errors are fatal.
type SQLErrorClassifier struct{}

// NewSQLErrorClassifier creates a new classifier.
func NewSQLErrorClassifier() *SQLErrorClassifier {
	return &SQLErrorClassifier{}
}

// IsTransient determines if an error is temporary and retryable.
func (c *SQLErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return c.isTransientPgError(pgErr)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return c.isTransientMySQLError(myErr)
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return c.isTransientSQLiteError(liteErr)
	}

	if errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, driver.ErrBadConn) {
		return true
	}

	if c.isNetworkError(err) {
		return true
	}

	return c.isConnectionError(err)
}

// isTransientPgError checks PostgreSQL SQLSTATE codes for transient conditions.
func (c *SQLErrorClassifier) isTransientPgError(pgErr *pgconn.PgError) bool {
	code := pgErr.Code

	// Class 08 - Connection Exception
	// Class 53 - Insufficient Resources
	// Class 57 - Operator Intervention (admin shutdown, starting up, etc.)
	for _, class := range []string{"08", "53", "57"} {
		if strings.HasPrefix(code, class) {
			return true
		}
	}

	switch code {
	case pgCodeSerializationFailure, pgCodeDeadlockDetected, pgCodeLockNotAvailable:
		return true
	}

	return false
}

func (c *SQLErrorClassifier) isTransientMySQLError(myErr *mysql.MySQLError) bool {
	switch myErr.Number {
	case mysqlErrConCount,
		mysqlErrServerShutdown,
		mysqlErrLockWaitTimeout,
		mysqlErrLockDeadlock,
		mysqlErrUserLimitReached,
		mysqlErrServerIsntRunning:
		return true
	}
	return false
}

func (c *SQLErrorClassifier) isTransientSQLiteError(liteErr *sqlite.Error) bool {
	switch liteErr.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}

// isNetworkError checks for network-level errors.
func (c *SQLErrorClassifier) isNetworkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() || dnsErr.Timeout()
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return true
		}
		if opErr.Err != nil {
			switch {
			case errors.Is(opErr.Err, syscall.ECONNREFUSED),
				errors.Is(opErr.Err, syscall.ECONNRESET),
				errors.Is(opErr.Err, syscall.ENETUNREACH),
				errors.Is(opErr.Err, syscall.EHOSTUNREACH):
				return true
			}
		}
	}

	return false
}

// isConnectionError falls back to message matching for drivers that flatten
// the underlying error into a string.
func (c *SQLErrorClassifier) isConnectionError(err error) bool {
	errMsg := strings.ToLower(err.Error())

	transientPatterns := []string{
		"connection refused",
		"actively refused",
		"connection reset",
		"connection timeout",
		"connection failure",
		"network is unreachable",
		"no route to host",
		"i/o timeout",
		"broken pipe",
		"too many connections",
		"server closed the connection",
		"the database system is starting up",
		"unexpected eof",
		"invalid connection",
		"bad connection",
		"database is locked",
	}

	for _, pattern := range transientPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return false
}
