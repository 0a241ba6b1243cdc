package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE classes we care about
const (
	uniqueViolation   = "23505"
	notNullViolation  = "23502"
	checkViolation    = "23514"
	dataExceptionFrom = "22"
)

// IsUniqueViolation reports whether err is a duplicate key error
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// IsRowError reports whether err was caused by the row itself (duplicate,
// malformed or out-of-range values) rather than by the connection or schema.
// Such rows can be skipped without failing the whole batch.
func IsRowError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch {
	case pgErr.Code == uniqueViolation, pgErr.Code == notNullViolation, pgErr.Code == checkViolation:
		return true
	case len(pgErr.Code) == 5 && pgErr.Code[:2] == dataExceptionFrom:
		return true
	}
	return false
}
