package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"camera-rental-backend/internal/domain"

	"github.com/lib/pq"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// mapError turns driver errors into domain errors where the caller can act on them.
func mapError(err error, entity string, id any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFoundError(fmt.Sprintf("%s %v not found", entity, id))
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return domain.NewConflictError(fmt.Sprintf("%s already exists: %s", entity, pqErr.Detail))
		case pqForeignKeyViolation:
			return domain.NewConflictError(fmt.Sprintf("%s %v is still referenced", entity, id))
		}
	}
	return err
}

// expectOneRow returns a not-found error when an update or delete touched nothing.
func expectOneRow(res sql.Result, entity string, id any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewNotFoundError(fmt.Sprintf("%s %v not found", entity, id))
	}
	return nil
}
