package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
)

// PlaylistStore defines the interface for playlist persistence. Playlists
// reference stories without owning them.
type PlaylistStore interface {
	// Create saves a new, empty playlist.
	// Returns ErrUserNotFound if the owner does not exist.
	Create(ctx context.Context, playlist *domain.Playlist) error

	// GetByID retrieves the owner's playlist with its story IDs in insertion order.
	// Returns ErrPlaylistNotFound if it does not exist or is not owned by ownerID.
	GetByID(ctx context.Context, ownerID, playlistID uuid.UUID) (*domain.Playlist, error)

	// ListByOwner returns all of the owner's playlists.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Playlist, error)

	// Delete removes the playlist. Referenced stories are left untouched.
	Delete(ctx context.Context, ownerID, playlistID uuid.UUID) error

	// AddStory links a story to a playlist. Adding a story twice is a no-op.
	AddStory(ctx context.Context, playlistID, storyID uuid.UUID) error

	// RemoveStory unlinks a story from a playlist.
	// Returns ErrStoryNotFound if the story is not in the playlist.
	RemoveStory(ctx context.Context, playlistID, storyID uuid.UUID) error

	// WithTx returns a new PlaylistStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) PlaylistStore
}
