package persistence

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound indicates a missing or soft-deleted record.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a uniqueness violation (e.g. a live slug already taken).
	ErrConflict = errors.New("record conflict")
	// ErrInvalidReference indicates a foreign key pointing at a missing record.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrUnknownKind indicates a slug kind outside the supported set.
	ErrUnknownKind = errors.New("unknown slug kind")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

// classifyWriteError maps constraint violations onto the package sentinels.
func classifyWriteError(err error) error {
	switch {
	case isUniqueViolation(err):
		return ErrConflict
	case isForeignKeyViolation(err):
		return ErrInvalidReference
	default:
		return err
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}
