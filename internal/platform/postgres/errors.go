package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/store"
)

// SQLSTATE codes for the integrity violations the schema can raise.
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
)

// foreignKeyTargets names the store error for each foreign key in the
// migrations. A violation means the referenced row does not exist.
var foreignKeyTargets = map[string]error{
	"stories_owner_id_fkey":             store.ErrUserNotFound,
	"playlists_owner_id_fkey":           store.ErrUserNotFound,
	"playlist_stories_playlist_id_fkey": store.ErrPlaylistNotFound,
	"playlist_stories_story_id_fkey":    store.ErrStoryNotFound,
}

// checkConstraintFields maps check constraints to the field they guard.
var checkConstraintFields = map[string]struct{ field, reason string }{
	"stories_associations_is_array": {"associations", "must be a JSON array"},
}

// MapError translates a PostgreSQL error into the store or domain error the
// callers match on. The driver error stays in the chain for logging.
//
//   - no rows: store.ErrNotFound
//   - unique violation: store.ErrDuplicate
//   - foreign key violation: the not-found error of the referenced entity
//   - check and not-null violations: *domain.ValidationError
//
// Anything else is returned unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolationCode:
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)

	case foreignKeyViolationCode:
		if target, ok := foreignKeyTargets[pgErr.ConstraintName]; ok {
			return fmt.Errorf("%w: %v", target, err)
		}
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)

	case checkViolationCode:
		if c, ok := checkConstraintFields[pgErr.ConstraintName]; ok {
			return fmt.Errorf("%w: %v", domain.NewValidationError(c.field, c.reason), err)
		}
		return fmt.Errorf("%w: %v", domain.NewValidationError(pgErr.ConstraintName, "violates a check constraint"), err)

	case notNullViolationCode:
		return fmt.Errorf("%w: %v", domain.NewValidationError(pgErr.ColumnName, "cannot be null"), err)
	}

	return err
}

// CheckRowsAffected returns notFound when result reports zero affected rows.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if notFound == nil {
			return store.ErrNotFound
		}
		return notFound
	}

	return nil
}

// isUniqueViolationOn reports whether err is a unique violation of the named constraint.
func isUniqueViolationOn(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode && pgErr.ConstraintName == constraint
}
