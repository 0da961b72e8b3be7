package database

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

// columns converts column names for goqu's Select
func columns(names ...string) []interface{} {
	out := make([]interface{}, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}

// scanError maps sql.ErrNoRows to a not-found error. A malformed id names no
// row either, so it is not found too.
func scanError(err error, notFound, failure string) error {
	if errors.Is(err, sql.ErrNoRows) || postgres.IsInvalidText(err) {
		return apperrors.NewNotFoundError(notFound)
	}
	return apperrors.NewPersistenceError(failure, err)
}

// queryError maps values PostgreSQL could not parse to a validation error
// and everything else to a persistence error
func queryError(failure string, err error) error {
	var pqErr *pq.Error
	if postgres.IsInvalidText(err) && errors.As(err, &pqErr) {
		return apperrors.NewValidationError(pqErr.Message)
	}
	return apperrors.NewPersistenceError(failure, err)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}
