package users

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/usersvc/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes we react to.
const uniqueViolation = "23505"

// classify turns a driver error into the common error taxonomy so nothing
// above the repository has to know about PostgreSQL error codes.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", common.ErrAlreadyExists, pgErr.ConstraintName)
		}
		return &common.StoreError{Message: pgErr.Message, Err: err}
	}

	return &common.StoreError{Err: err}
}
