package pgutils

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	// Class 23: Integrity Constraint Violation
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeNotNullViolation    = "23502"
	CodeCheckViolation      = "23514"

	// Class 08: Connection Exception
	classConnectionException = "08"
	// Class 57P: Operator Intervention (admin_shutdown, crash_shutdown, cannot_connect_now)
	classOperatorIntervention = "57P"
)

// fieldError is implemented by bun's pgdriver.Error.
type fieldError interface {
	Field(k byte) string
}

// SQLState extracts the SQLSTATE code carried by err, or "" if none is found.
func SQLState(err error) string {
	if err == nil {
		return ""
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var fe fieldError
	if errors.As(err, &fe) {
		return fe.Field('C')
	}
	return ""
}

// IsUniqueViolation checks if the error is a PostgreSQL unique constraint violation (23505).
func IsUniqueViolation(err error) bool {
	return hasErrorCode(err, CodeUniqueViolation)
}

// IsForeignKeyViolation checks if the error is a PostgreSQL foreign key violation (23503).
func IsForeignKeyViolation(err error) bool {
	return hasErrorCode(err, CodeForeignKeyViolation)
}

// IsNotNullViolation checks if the error is a PostgreSQL not-null constraint violation (23502).
func IsNotNullViolation(err error) bool {
	return hasErrorCode(err, CodeNotNullViolation)
}

// IsCheckViolation checks if the error is a PostgreSQL check constraint violation (23514).
func IsCheckViolation(err error) bool {
	return hasErrorCode(err, CodeCheckViolation)
}

// IsConnectionError reports whether err is a transport failure rather than a
// statement failure: dial/read errors, broken connections, server shutdown,
// or the caller's context ending while the call was in flight.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	code := SQLState(err)
	return strings.HasPrefix(code, classConnectionException) || strings.HasPrefix(code, classOperatorIntervention)
}

// hasErrorCode compares the typed SQLSTATE first and falls back to the message
// for drivers that only report the code as text.
func hasErrorCode(err error, code string) bool {
	if err == nil {
		return false
	}
	if state := SQLState(err); state != "" {
		return state == code
	}
	return containsErrorCode(err, code)
}

// containsErrorCode checks if the error message carries "SQLSTATE <code>".
// A bare number is not enough: addresses and ids can contain one.
func containsErrorCode(err error, code string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "SQLSTATE "+code)
}
