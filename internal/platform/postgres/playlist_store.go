package postgres

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

// PostgresPlaylistStore implements the store.PlaylistStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPlaylistStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPlaylistStore creates a new PostgreSQL implementation of the PlaylistStore interface.
func NewPostgresPlaylistStore(db store.DBTX, logger *slog.Logger) *PostgresPlaylistStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPlaylistStore{
		db:     db,
		logger: logger.With(slog.String("component", "playlist_store")),
	}
}

var _ store.PlaylistStore = (*PostgresPlaylistStore)(nil)

// WithTx implements store.PlaylistStore.WithTx
func (s *PostgresPlaylistStore) WithTx(tx *sql.Tx) store.PlaylistStore {
	return &PostgresPlaylistStore{db: tx, logger: s.logger}
}

// Create implements store.PlaylistStore.Create
func (s *PostgresPlaylistStore) Create(ctx context.Context, p *domain.Playlist) error {
	if err := p.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO playlists (id, owner_id, name, description, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.OwnerID, p.Name, p.Description, p.CreatedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create playlist",
			slog.String("error", err.Error()),
			slog.String("playlist_id", p.ID.String()))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.PlaylistStore.GetByID
func (s *PostgresPlaylistStore) GetByID(ctx context.Context, ownerID, playlistID uuid.UUID) (*domain.Playlist, error) {
	var p domain.Playlist
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, description, created_at
		FROM playlists WHERE id = $1 AND owner_id = $2`, playlistID, ownerID,
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
func (s *PostgresPlaylistStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name, description, created_at
		FROM playlists WHERE owner_id = $1 ORDER BY created_at, id`, ownerID)
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

func (s *PostgresPlaylistStore) storyIDs(ctx context.Context, playlistID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT story_id FROM playlist_stories WHERE playlist_id = $1 ORDER BY position`, playlistID)
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
func (s *PostgresPlaylistStore) Delete(ctx context.Context, ownerID, playlistID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM playlists WHERE id = $1 AND owner_id = $2`, playlistID, ownerID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrPlaylistNotFound)
}

// AddStory implements store.PlaylistStore.AddStory
func (s *PostgresPlaylistStore) AddStory(ctx context.Context, playlistID, storyID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO playlist_stories (playlist_id, story_id, position)
		SELECT $1::uuid, $2::uuid, COALESCE(MAX(position), 0) + 1
		FROM playlist_stories WHERE playlist_id = $1
		ON CONFLICT DO NOTHING`,
		playlistID, storyID)
	return MapError(err)
}

// RemoveStory implements store.PlaylistStore.RemoveStory
func (s *PostgresPlaylistStore) RemoveStory(ctx context.Context, playlistID, storyID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM playlist_stories WHERE playlist_id = $1 AND story_id = $2`, playlistID, storyID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrStoryNotFound)
}
