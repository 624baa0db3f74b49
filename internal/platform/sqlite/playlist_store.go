package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
	"github.com/phrazzld/mnemo-api/internal/store"
)

// SQLitePlaylistStore implements the store.PlaylistStore interface
// using a SQLite database as the storage backend.
type SQLitePlaylistStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLitePlaylistStore creates a new SQLite implementation of the PlaylistStore interface.
func NewSQLitePlaylistStore(db store.DBTX, logger *slog.Logger) *SQLitePlaylistStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLitePlaylistStore{
		db:     db,
		logger: logger.With(slog.String("component", "playlist_store")),
	}
}

var _ store.PlaylistStore = (*SQLitePlaylistStore)(nil)

// WithTx implements store.PlaylistStore.WithTx
func (s *SQLitePlaylistStore) WithTx(tx *sql.Tx) store.PlaylistStore {
	return &SQLitePlaylistStore{db: tx, logger: s.logger}
}

// Create implements store.PlaylistStore.Create
func (s *SQLitePlaylistStore) Create(ctx context.Context, p *domain.Playlist) error {
	if err := p.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO playlists (id, owner_id, name, description, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.OwnerID, p.Name, p.Description, p.CreatedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create playlist",
			slog.String("error", err.Error()),
			slog.String("playlist_id", p.ID.String()))
		return mapForeignKeyError(err, store.ErrUserNotFound)
	}
	return nil
}

// GetByID implements store.PlaylistStore.GetByID
func (s *SQLitePlaylistStore) GetByID(ctx context.Context, ownerID, playlistID uuid.UUID) (*domain.Playlist, error) {
	var p domain.Playlist
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, description, created_at
		FROM playlists WHERE id = ? AND owner_id = ?`, playlistID, ownerID,
	).Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPlaylistNotFound
		}
		return nil, err
	}

	if p.StoryIDs, err = s.storyIDs(ctx, p.ID); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByOwner implements store.PlaylistStore.ListByOwner
func (s *SQLitePlaylistStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name, description, created_at
		FROM playlists WHERE owner_id = ? ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	playlists := []*domain.Playlist{}
	for rows.Next() {
		var p domain.Playlist
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			_ = rows.Close()
			return nil, err
		}
		playlists = append(playlists, &p)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	// Close before issuing further queries on the same transaction.
	_ = rows.Close()

	for _, p := range playlists {
		if p.StoryIDs, err = s.storyIDs(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return playlists, nil
}

func (s *SQLitePlaylistStore) storyIDs(ctx context.Context, playlistID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT story_id FROM playlist_stories WHERE playlist_id = ? ORDER BY position`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlist stories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete implements store.PlaylistStore.Delete
func (s *SQLitePlaylistStore) Delete(ctx context.Context, ownerID, playlistID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM playlists WHERE id = ? AND owner_id = ?`, playlistID, ownerID)
	if err != nil {
		return MapError(err)
	}
	return checkRowsAffected(result, store.ErrPlaylistNotFound)
}

// AddStory implements store.PlaylistStore.AddStory
// A missing playlist or story yields store.ErrNotFound.
func (s *SQLitePlaylistStore) AddStory(ctx context.Context, playlistID, storyID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO playlist_stories (playlist_id, story_id, position)
		SELECT ?, ?, COALESCE(MAX(position), 0) + 1
		FROM playlist_stories WHERE playlist_id = ?
		ON CONFLICT DO NOTHING`,
		playlistID, storyID, playlistID)
	return MapError(err)
}

// RemoveStory implements store.PlaylistStore.RemoveStory
func (s *SQLitePlaylistStore) RemoveStory(ctx context.Context, playlistID, storyID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM playlist_stories WHERE playlist_id = ? AND story_id = ?`, playlistID, storyID)
	if err != nil {
		return MapError(err)
	}
	return checkRowsAffected(result, store.ErrStoryNotFound)
}
