package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	domainauth "github.com/NordCoder/go-auth/internal/domain/auth"
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// storeErr tags driver failures, timeouts included, as ErrStore so callers never
// confuse an unreachable database with a missing row.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domainauth.ErrStore, op, err)
}
