package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrConflict is returned when a write collides with an existing row.
var ErrConflict = errors.New("already exists")

// ErrNotFound is returned when a row, or the entity owning it, is not found
// or not visible to the caller.
var ErrNotFound = errors.New("not found")

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// wrapErr maps driver errors onto the package sentinels and wraps the rest.
func wrapErr(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrConflict
		case pgForeignKeyViolation:
			return ErrNotFound
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
