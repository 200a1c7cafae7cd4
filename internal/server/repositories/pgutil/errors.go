// Package pgutil classifies PostgreSQL driver errors for repositories.
package pgutil

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// ValidID reports whether id can be used as a UUID key. Malformed ids are
// treated as missing rows instead of being sent to the database.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
