package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/foxfund/foxfund-go/internal/domain"
)

// Postgres error codes we translate to domain errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// mapError translates storage-level failures into domain errors.
// pgx.ErrNoRows becomes ErrNotFound, unique violations become ErrDuplicate.
// The unique constraints are the authoritative guard against duplicates;
// any pre-check in the service layer is advisory only.
func mapError(err error, resource, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.ErrNotFound{Resource: resource, ID: id}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return &domain.ErrDuplicate{Resource: resource, Key: pgErr.ConstraintName}
		case codeForeignKeyViolation:
			return &domain.ErrConflict{Message: resource + " references a missing record"}
		}
	}

	return err
}
