package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Kind is the storage-agnostic category of a database failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindConflict
	KindNotNull
	KindInvalidFormat
	KindInvalidReference
	KindNotFound
	KindConnection
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindConflict:
		return "conflict"
	case KindNotNull:
		return "not_null"
	case KindInvalidFormat:
		return "invalid_format"
	case KindInvalidReference:
		return "invalid_reference"
	case KindNotFound:
		return "not_found"
	case KindConnection:
		return "connection"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is a classified database error. Store helpers return it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var dbErr *Error
	if errors.As(err, &dbErr) {
		return err
	}
	return &Error{Kind: Classify(err), Op: op, Err: err}
}

// Classify maps driver, GORM and network errors onto a Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var dbErr *Error
	if errors.As(err, &dbErr) {
		return dbErr.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if k := classifyPostgres(pgErr.Code); k != KindUnknown {
			return k
		}
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if k := classifyMySQL(myErr.Number); k != KindUnknown {
			return k
		}
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return KindConflict
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return KindInvalidReference
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return KindInvalidFormat
	case errors.Is(err, gorm.ErrRecordNotFound):
		return KindNotFound
	}

	if pgconn.Timeout(err) {
		return KindTimeout
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return KindConnection
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, driver.ErrBadConn) {
		return KindConnection
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindConnection
	}

	return classifyMessage(err.Error())
}

func classifyPostgres(code string) Kind {
	switch code {
	case "23505":
		return KindConflict
	case "23502":
		return KindNotNull
	case "23503":
		return KindInvalidReference
	case "23514", "22007", "22008", "22P02", "22001":
		return KindInvalidFormat
	case "57014":
		return KindTimeout
	}
	if strings.HasPrefix(code, "08") || code == "53300" || code == "57P03" {
		return KindConnection
	}
	return KindUnknown
}

func classifyMySQL(number uint16) Kind {
	switch number {
	case 1062:
		return KindConflict
	case 1048, 1364:
		return KindNotNull
	case 1451, 1452:
		return KindInvalidReference
	case 1292, 1406:
		return KindInvalidFormat
	case 1205, 3024:
		return KindTimeout
	case 1040, 1045, 1049, 2002, 2003, 2006, 2013:
		return KindConnection
	}
	return KindUnknown
}

func classifyMessage(msg string) Kind {
	m := strings.ToLower(msg)
	switch {
	case strings.Contains(m, "unique constraint failed"),
		strings.Contains(m, "duplicate key"),
		strings.Contains(m, "duplicate entry"):
		return KindConflict
	case strings.Contains(m, "not null constraint failed"),
		strings.Contains(m, "violates not-null"),
		strings.Contains(m, "cannot be null"):
		return KindNotNull
	case strings.Contains(m, "foreign key constraint failed"):
		return KindInvalidReference
	case strings.Contains(m, "invalid input syntax"),
		strings.Contains(m, "incorrect date"),
		strings.Contains(m, "invalid date"):
		return KindInvalidFormat
	case strings.Contains(m, "timeout"), strings.Contains(m, "deadline exceeded"):
		return KindTimeout
	case strings.Contains(m, "connection refused"),
		strings.Contains(m, "no such host"),
		strings.Contains(m, "broken pipe"),
		strings.Contains(m, "bad connection"),
		strings.Contains(m, "database is closed"):
		return KindConnection
	}
	return KindUnknown
}
