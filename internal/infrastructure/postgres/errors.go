package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/authgate/authgate/pkg/apperr"
)

const pgUniqueViolation = "23505"

// errNoRowsAffected marks a mutate that matched no row, reported as NotFound.
var errNoRowsAffected = errors.New("no rows affected")

// translate maps driver errors into the application taxonomy at the store
// boundary: unique-constraint violations become Conflict, missing rows
// become NotFound, anything else is wrapped as internal.
func translate(err error, notFoundMsg, conflictMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, errNoRowsAffected) {
		return apperr.NotFound(notFoundMsg)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return apperr.Conflict(conflictMsg)
	}
	return apperr.Internal("database error", err)
}
