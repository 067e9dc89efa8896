package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"course-market/internal/apperr"
)

// constraintError turns a postgres integrity violation into a user-facing
// error. onUnique supplies the error for unique violations.
func constraintError(err error, onUnique func(error) error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return onUnique(err)
	case pgerrcode.NotNullViolation:
		return apperr.FieldConstraint(pgErr.ColumnName+" cannot be null", err)
	case pgerrcode.ForeignKeyViolation:
		return apperr.FieldConstraint("referenced record does not exist", err)
	case pgerrcode.CheckViolation:
		return apperr.FieldConstraint("validation failed", err)
	}
	return err
}
