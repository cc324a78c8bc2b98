package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"postgres unique", &pgconn.PgError{Code: "23505"}, KindConflict},
		{"postgres not null", &pgconn.PgError{Code: "23502"}, KindNotNull},
		{"postgres fk", &pgconn.PgError{Code: "23503"}, KindInvalidReference},
		{"postgres bad datetime", &pgconn.PgError{Code: "22007"}, KindInvalidFormat},
		{"postgres datetime overflow", &pgconn.PgError{Code: "22008"}, KindInvalidFormat},
		{"postgres connection class", &pgconn.PgError{Code: "08006"}, KindConnection},
		{"postgres canceled", &pgconn.PgError{Code: "57014"}, KindTimeout},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, KindConflict},
		{"mysql null", &mysql.MySQLError{Number: 1048}, KindNotNull},
		{"mysql fk", &mysql.MySQLError{Number: 1452}, KindInvalidReference},
		{"mysql bad date", &mysql.MySQLError{Number: 1292}, KindInvalidFormat},
		{"wrapped mysql duplicate", fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062}), KindConflict},
		{"gorm duplicate", gorm.ErrDuplicatedKey, KindConflict},
		{"gorm not found", gorm.ErrRecordNotFound, KindNotFound},
		{"gorm fk", gorm.ErrForeignKeyViolated, KindInvalidReference},
		{"econnrefused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, KindConnection},
		{"bare econnrefused", syscall.ECONNREFUSED, KindConnection},
		{"deadline", context.DeadlineExceeded, KindTimeout},
		{"wrapped deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), KindTimeout},
		{"net timeout", timeoutErr{}, KindTimeout},
		{"sqlite unique", errors.New("UNIQUE constraint failed: bookings.booking_date, bookings.booking_time"), KindConflict},
		{"sqlite not null", errors.New("NOT NULL constraint failed: bookings.customer_name"), KindNotNull},
		{"closed pool", errors.New("sql: database is closed"), KindConnection},
		{"other", errors.New("boom"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestWrapKeepsKindAndCause(t *testing.T) {
	cause := &pgconn.PgError{Code: "23505"}
	err := wrap("insert", cause)

	var dbErr *Error
	assert.True(t, errors.As(err, &dbErr))
	assert.Equal(t, KindConflict, dbErr.Kind)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindConflict, Classify(fmt.Errorf("booking: %w", err)))
	assert.Nil(t, wrap("noop", nil))
}
