package pgutils

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

type fakeFieldError struct {
	code string
}

func (e fakeFieldError) Error() string { return "pgdriver: " + e.code }

func (e fakeFieldError) Field(k byte) string {
	if k == 'C' {
		return e.code
	}
	return ""
}

func TestSQLState(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"pgconn error", &pgconn.PgError{Code: CodeUniqueViolation}, CodeUniqueViolation},
		{"wrapped pgconn error", fmt.Errorf("insert: %w", &pgconn.PgError{Code: CodeForeignKeyViolation}), CodeForeignKeyViolation},
		{"pgdriver style error", fakeFieldError{code: CodeCheckViolation}, CodeCheckViolation},
		{"plain error", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SQLState(tt.err))
		})
	}
}

func TestConstraintClassification(t *testing.T) {
	unique := &pgconn.PgError{Code: CodeUniqueViolation}
	fk := &pgconn.PgError{Code: CodeForeignKeyViolation}
	check := &pgconn.PgError{Code: CodeCheckViolation}
	notNull := &pgconn.PgError{Code: CodeNotNullViolation}

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(fk))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.True(t, IsCheckViolation(check))
	assert.True(t, IsNotNullViolation(notNull))
	assert.False(t, IsUniqueViolation(nil))
}

func TestTypedCodeWinsOverMessage(t *testing.T) {
	// The message mentions 23505 but the typed code says foreign key.
	err := &pgconn.PgError{Code: CodeForeignKeyViolation, Message: "looks like 23505"}
	assert.False(t, IsUniqueViolation(err))
	assert.True(t, IsForeignKeyViolation(err))
}

func TestContainsErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		want bool
	}{
		{"nil error", nil, CodeUniqueViolation, false},
		{"code with SQLSTATE prefix", errors.New("ERROR: duplicate key value (SQLSTATE 23505)"), CodeUniqueViolation, true},
		{"bare code", errors.New("Error 23505 occurred"), CodeUniqueViolation, false},
		{"code inside an address", errors.New("dial tcp db-23505.internal:5432: i/o timeout"), CodeUniqueViolation, false},
		{"different code", errors.New("SQLSTATE 23503 foreign key violation"), CodeUniqueViolation, false},
		{"empty message", errors.New(""), CodeUniqueViolation, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, containsErrorCode(tt.err, tt.code))
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"bad conn", driver.ErrBadConn, true},
		{"wrapped eof", fmt.Errorf("read: %w", io.EOF), true},
		{"unexpected eof", io.ErrUnexpectedEOF, true},
		{"context canceled", context.Canceled, true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"net op error", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, true},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"connection failure class", &pgconn.PgError{Code: "08006"}, true},
		{"unique violation", &pgconn.PgError{Code: CodeUniqueViolation}, false},
		{"syntax error", &pgconn.PgError{Code: "42601"}, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConnectionError(tt.err))
		})
	}
}
