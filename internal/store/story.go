package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
)

// StoryStore defines the interface for story data persistence.
//
// A story is stored and loaded as a whole, associations included, and their
// order is preserved exactly. Every read is scoped to an owner: a story that
// exists but belongs to someone else is reported as ErrStoryNotFound.
//
// Concurrent reviews of the same story are a read-modify-write race.
// Callers that update a story derived from an earlier read MUST do both
// inside one transaction using GetForUpdate; a plain GetByID followed by
// Update can silently lose a concurrent writer's changes.
type StoryStore interface {
	// Create saves a new story.
	// Returns validation errors from the domain Story if data is invalid,
	// or ErrUserNotFound if the owner does not exist.
	Create(ctx context.Context, story *domain.Story) error

	// GetByID retrieves the owner's story.
	// Returns ErrStoryNotFound if the story does not exist or is not owned by ownerID.
	GetByID(ctx context.Context, ownerID, storyID uuid.UUID) (*domain.Story, error)

	// GetForUpdate behaves like GetByID but additionally locks the story
	// against concurrent writers until the surrounding transaction ends.
	// It is only meaningful on a store obtained through WithTx.
	GetForUpdate(ctx context.Context, ownerID, storyID uuid.UUID) (*domain.Story, error)

	// ListByOwner returns all of the owner's stories, newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Story, error)

	// Update replaces the stored story, associations included, and sets UpdatedAt.
	// Returns ErrStoryNotFound if the story does not exist or is not owned by story.OwnerID.
	Update(ctx context.Context, story *domain.Story) error

	// Delete removes the owner's story and its associations, and detaches it
	// from any playlist.
	// Returns ErrStoryNotFound if the story does not exist or is not owned by ownerID.
	Delete(ctx context.Context, ownerID, storyID uuid.UUID) error

	// WithTx returns a new StoryStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) StoryStore
}
