// Package store provides database access methods for all Umbra Docs
// entities. Each store struct wraps a *sql.DB and exposes typed query
// methods. Lookup methods return (nil, nil) when no row matches; unique
// constraint violations surface as ErrConflict so callers can re-resolve
// and retry.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrConflict indicates a unique constraint rejected the write (slug,
// email, telegram, or category key already taken). The database is the
// final authority on uniqueness; application-level checks are only a
// best-effort hint.
var ErrConflict = errors.New("store: unique constraint violation")

// uniqueViolation is the PostgreSQL error code for unique_violation.
const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a PostgreSQL unique
// constraint rejection.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
