package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/platform/database"
	"github.com/stretchr/testify/require"
)

// newTestDB opens a fresh, fully migrated database file for one test.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m, err := database.NewMigrator(db, database.DriverSQLite, nil)
	require.NoError(t, err)
	_, err = m.Up(context.Background())
	require.NoError(t, err)

	return db
}

func createTestUser(t *testing.T, db *sql.DB, name string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(name, name+"@example.com", "correct-horse-battery")
	require.NoError(t, err)
	user.HashedPassword = "$2a$10$abcdefghijklmnopqrstuv"
	require.NoError(t, NewSQLiteUserStore(db, nil).Create(context.Background(), user))
	return user
}

func createTestStory(t *testing.T, db *sql.DB, ownerID uuid.UUID, topic string) *domain.Story {
	t.Helper()
	shape := domain.ShapeRect
	box := domain.BoundingBox{1, 2, 3, 4}
	story, err := domain.NewStory(ownerID, topic, []string{"fact one", "fact two"}, "narrative",
		[]domain.Association{
			{Term: "first", Character: "c1", Explanation: "e1"},
			{Term: "second", Character: "c2", Explanation: "e2", Shape: &shape, BoundingBox: &box},
		}, "prompt")
	require.NoError(t, err)
	require.NoError(t, NewSQLiteStoryStore(db, nil).Create(context.Background(), story))
	return story
}
