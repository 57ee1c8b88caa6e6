package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// Errors maps database failures onto a store's domain errors. Nil fields
// leave the matching failure unchanged.
type Errors struct {
	// NotFound replaces sql.ErrNoRows.
	NotFound error
	// Duplicate replaces unique-key violations.
	Duplicate error
	// Conflict replaces serialization failures and deadlocks, the errors a
	// caller should resolve by reloading and retrying.
	Conflict error
}

// Map translates err. Unrecognized errors are returned unchanged.
func (e Errors) Map(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return orSelf(e.NotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return orSelf(e.Duplicate, err)
		case pgSerializationFailure, pgDeadlockDetected:
			return orSelf(e.Conflict, err)
		}
	}

	return err
}

func orSelf(mapped, err error) error {
	if mapped == nil {
		return err
	}
	return mapped
}
