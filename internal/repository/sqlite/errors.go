package sqlite

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"course-market/internal/apperr"
)

// constraintError turns a sqlite constraint failure into a user-facing error.
// onUnique supplies the error for unique violations. Non-constraint errors
// are returned unchanged.
func constraintError(err error, onUnique func(error) error) error {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}

	code := se.Code()
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return onUnique(err)
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return apperr.FieldConstraint(columnDetail(se.Error(), "cannot be null"), err)
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return apperr.FieldConstraint("referenced record does not exist", err)
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return apperr.FieldConstraint("validation failed", err)
	}

	if code&0xff == sqlite3.SQLITE_CONSTRAINT {
		if strings.Contains(se.Error(), "UNIQUE") {
			return onUnique(err)
		}
		return apperr.FieldConstraint("validation failed", err)
	}
	return err
}

// columnDetail extracts "column" from messages like
// "NOT NULL constraint failed: courses.name" and appends suffix.
func columnDetail(msg, suffix string) string {
	idx := strings.LastIndex(msg, ".")
	if idx < 0 || idx == len(msg)-1 {
		return "validation failed"
	}
	column := msg[idx+1:]
	if end := strings.IndexAny(column, " )"); end >= 0 {
		column = column[:end]
	}
	return column + " " + suffix
}
