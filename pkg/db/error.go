package db

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Low-cardinality reasons for failed blob store queries.
const (
	ReasonDuplicateKey  = "duplicate_key"
	ReasonSerialization = "serialization_failure"
	ReasonDeadlock      = "deadlock"
	ReasonLockTimeout   = "lock_timeout"
	ReasonConnection    = "connection"
	ReasonUnknown       = "unknown"
)

// ErrorReason classifies a driver error from any of the supported dialects.
func ErrorReason(err error) string {
	if err == nil {
		return ""
	}
	if IsDuplicateKeyErr(err) {
		return ReasonDuplicateKey
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "40001":
			return ReasonSerialization
		case pgErr.Code == "40P01":
			return ReasonDeadlock
		case pgErr.Code == "55P03":
			return ReasonLockTimeout
		case strings.HasPrefix(pgErr.Code, "08"):
			return ReasonConnection
		}
		return ReasonUnknown
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1213:
			return ReasonDeadlock
		case 1205:
			return ReasonLockTimeout
		}
		return ReasonUnknown
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || errors.Is(err, mysql.ErrInvalidConn) {
		return ReasonConnection
	}
	if strings.Contains(err.Error(), "database is locked") { // sqlite
		return ReasonLockTimeout
	}
	return ReasonUnknown
}

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	// sqlite drivers only expose the message.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
