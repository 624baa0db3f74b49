package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/store"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// MapError maps a SQLite error to the corresponding store or domain error,
// wrapping the original so that it stays available for logging.
//
// SQLite does not name the foreign key that failed, so a foreign key violation
// maps to the generic store.ErrNotFound. Stores that know which row the insert
// referenced use mapForeignKeyError instead.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
		return err
	}

	msg := sqliteErr.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "PRIMARY KEY constraint failed"):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return fmt.Errorf("%w: %v", domain.NewValidationError(failedColumn(msg), "cannot be null"), err)
	case strings.Contains(msg, "CHECK constraint failed") && strings.Contains(msg, "associations"):
		return fmt.Errorf("%w: %v", domain.NewValidationError("associations", "must be a JSON array"), err)
	default:
		return fmt.Errorf("%w: %v", domain.NewValidationError("entity", "violates a constraint"), err)
	}
}

// mapForeignKeyError maps a foreign key violation to notFound, the error of
// the row the statement referenced, and defers everything else to MapError.
func mapForeignKeyError(err error, notFound error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && strings.Contains(sqliteErr.Error(), "FOREIGN KEY constraint failed") {
		return fmt.Errorf("%w: %v", notFound, err)
	}
	return MapError(err)
}

// failedColumn extracts the column from "NOT NULL constraint failed: stories.topic".
// modernc prefixes the message with the primary code, so the last marker wins.
func failedColumn(msg string) string {
	const marker = "constraint failed: "
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return "entity"
	}
	name := strings.TrimSpace(msg[i+len(marker):])
	if j := strings.IndexAny(name, " ("); j >= 0 {
		name = name[:j]
	}
	if _, column, ok := strings.Cut(name, "."); ok {
		return column
	}
	return name
}

// isUniqueViolationOn reports whether err is a unique constraint failure on
// table.column. SQLite reports the column in the message as
// "UNIQUE constraint failed: users.email".
func isUniqueViolationOn(err error, column string) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	msg := sqliteErr.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, column)
}

// checkRowsAffected returns notFound when result reports zero affected rows.
func checkRowsAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
