package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
	"github.com/phrazzld/mnemo-api/internal/store"
)

// PlaylistService manages a user's playlists. Playlists reference stories
// but never own them.
type PlaylistService interface {
	ListPlaylists(ctx context.Context, ownerID uuid.UUID) ([]*domain.Playlist, error)
	GetPlaylist(ctx context.Context, ownerID, playlistID uuid.UUID) (*domain.Playlist, error)
	CreatePlaylist(ctx context.Context, ownerID uuid.UUID, name, description string) (*domain.Playlist, error)
	DeletePlaylist(ctx context.Context, ownerID, playlistID uuid.UUID) error

	// AddStory links one of the owner's stories to one of the owner's playlists.
	AddStory(ctx context.Context, ownerID, playlistID, storyID uuid.UUID) error

	// RemoveStory unlinks a story from the owner's playlist.
	RemoveStory(ctx context.Context, ownerID, playlistID, storyID uuid.UUID) error
}

type playlistService struct {
	playlists store.PlaylistStore
	stories   store.StoryStore
	db        *sql.DB
	logger    *slog.Logger
}

// NewPlaylistService creates a new PlaylistService.
func NewPlaylistService(
	playlists store.PlaylistStore,
	stories store.StoryStore,
	db *sql.DB,
	logger *slog.Logger,
) (PlaylistService, error) {
	if playlists == nil {
		return nil, domain.NewValidationError("playlists", "cannot be nil")
	}
	if stories == nil {
		return nil, domain.NewValidationError("stories", "cannot be nil")
	}
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &playlistService{
		playlists: playlists,
		stories:   stories,
		db:        db,
		logger:    logger.With(slog.String("component", "playlist_service")),
	}, nil
}

func (s *playlistService) ListPlaylists(ctx context.Context, ownerID uuid.UUID) ([]*domain.Playlist, error) {
	playlists, err := s.playlists.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, newServiceError("playlist", "list", err)
	}
	return playlists, nil
}

func (s *playlistService) GetPlaylist(ctx context.Context, ownerID, playlistID uuid.UUID) (*domain.Playlist, error) {
	playlist, err := s.playlists.GetByID(ctx, ownerID, playlistID)
	if err != nil {
		return nil, newServiceError("playlist", "get", err)
	}
	return playlist, nil
}

func (s *playlistService) CreatePlaylist(
	ctx context.Context,
	ownerID uuid.UUID,
	name, description string,
) (*domain.Playlist, error) {
	playlist, err := domain.NewPlaylist(ownerID, name, description)
	if err != nil {
		return nil, domain.NewValidationError("name", err.Error())
	}

	if err := s.playlists.Create(ctx, playlist); err != nil {
		return nil, newServiceError("playlist", "create", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("playlist created",
		slog.String("playlist_id", playlist.ID.String()))
	return playlist, nil
}

func (s *playlistService) DeletePlaylist(ctx context.Context, ownerID, playlistID uuid.UUID) error {
	if err := s.playlists.Delete(ctx, ownerID, playlistID); err != nil {
		return newServiceError("playlist", "delete", err)
	}
	return nil
}

func (s *playlistService) AddStory(ctx context.Context, ownerID, playlistID, storyID uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.playlists.WithTx(tx).GetByID(ctx, ownerID, playlistID); err != nil {
			return err
		}
		if _, err := s.stories.WithTx(tx).GetByID(ctx, ownerID, storyID); err != nil {
			return err
		}
		return s.playlists.WithTx(tx).AddStory(ctx, playlistID, storyID)
	})
	if err != nil {
		return newServiceError("playlist", "add_story", err)
	}
	return nil
}

func (s *playlistService) RemoveStory(ctx context.Context, ownerID, playlistID, storyID uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.playlists.WithTx(tx).GetByID(ctx, ownerID, playlistID); err != nil {
			return err
		}
		return s.playlists.WithTx(tx).RemoveStory(ctx, playlistID, storyID)
	})
	if err != nil {
		return newServiceError("playlist", "remove_story", err)
	}
	return nil
}
