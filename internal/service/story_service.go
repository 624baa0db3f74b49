package service

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
	"github.com/phrazzld/mnemo-api/internal/store"
)

// StoryInput carries the client-editable fields of a story.
type StoryInput struct {
	Topic          string
	Facts          []string
	Narrative      string
	Associations   []domain.Association
	VisualPrompt   string
	GeneratedImage *string
}

// DueAssociation identifies one association that is due for review.
type DueAssociation struct {
	StoryID          uuid.UUID          `json:"storyId"`
	Topic            string             `json:"topic"`
	AssociationIndex int                `json:"associationIndex"`
	Association      domain.Association `json:"association"`
}

// StoryService manages a user's stories. Every operation is scoped to the
// owner; stories of other users are reported as store.ErrStoryNotFound.
type StoryService interface {
	ListStories(ctx context.Context, ownerID uuid.UUID) ([]*domain.Story, error)
	GetStory(ctx context.Context, ownerID, storyID uuid.UUID) (*domain.Story, error)
	CreateStory(ctx context.Context, ownerID uuid.UUID, input StoryInput) (*domain.Story, error)

	// UpdateStory replaces the editable fields of a story, memory states
	// included, and keeps its identity and creation time.
	UpdateStory(ctx context.Context, ownerID, storyID uuid.UUID, input StoryInput) (*domain.Story, error)

	DeleteStory(ctx context.Context, ownerID, storyID uuid.UUID) error

	// ListDue returns every association due at now across the owner's
	// stories. Never reviewed associations come first, then the rest by due
	// date, oldest first.
	ListDue(ctx context.Context, ownerID uuid.UUID, now time.Time) ([]DueAssociation, error)
}

type storyService struct {
	stories store.StoryStore
	db      *sql.DB
	logger  *slog.Logger
}

// NewStoryService creates a new StoryService.
func NewStoryService(stories store.StoryStore, db *sql.DB, logger *slog.Logger) (StoryService, error) {
	if stories == nil {
		return nil, domain.NewValidationError("stories", "cannot be nil")
	}
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &storyService{
		stories: stories,
		db:      db,
		logger:  logger.With(slog.String("component", "story_service")),
	}, nil
}

func (s *storyService) ListStories(ctx context.Context, ownerID uuid.UUID) ([]*domain.Story, error) {
	stories, err := s.stories.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, newServiceError("story", "list", err)
	}
	return stories, nil
}

func (s *storyService) GetStory(ctx context.Context, ownerID, storyID uuid.UUID) (*domain.Story, error) {
	story, err := s.stories.GetByID(ctx, ownerID, storyID)
	if err != nil {
		return nil, newServiceError("story", "get", err)
	}
	return story, nil
}

func (s *storyService) CreateStory(ctx context.Context, ownerID uuid.UUID, input StoryInput) (*domain.Story, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	story, err := domain.NewStory(ownerID, input.Topic, input.Facts, input.Narrative,
		input.Associations, input.VisualPrompt)
	if err != nil {
		return nil, err
	}
	story.GeneratedImage = input.GeneratedImage

	if err := s.stories.Create(ctx, story); err != nil {
		log.Error("failed to create story", slog.String("error", err.Error()))
		return nil, newServiceError("story", "create", err)
	}

	log.Info("story created",
		slog.String("story_id", story.ID.String()),
		slog.Int("associations", len(story.Associations)))
	return story, nil
}

func (s *storyService) UpdateStory(
	ctx context.Context,
	ownerID, storyID uuid.UUID,
	input StoryInput,
) (*domain.Story, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Story
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStories := s.stories.WithTx(tx)

		current, err := txStories.GetForUpdate(ctx, ownerID, storyID)
		if err != nil {
			return err
		}

		next := current.Clone()
		next.Topic = input.Topic
		next.Facts = input.Facts
		next.Narrative = input.Narrative
		next.Associations = input.Associations
		next.VisualPrompt = input.VisualPrompt
		next.GeneratedImage = input.GeneratedImage
		if next.Facts == nil {
			next.Facts = []string{}
		}
		if next.Associations == nil {
			next.Associations = []domain.Association{}
		}
		if err := next.Validate(); err != nil {
			return err
		}

		if err := txStories.Update(ctx, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Debug("story update failed", slog.String("error", err.Error()))
		}
		return nil, newServiceError("story", "update", err)
	}

	return updated, nil
}

func (s *storyService) DeleteStory(ctx context.Context, ownerID, storyID uuid.UUID) error {
	if err := s.stories.Delete(ctx, ownerID, storyID); err != nil {
		return newServiceError("story", "delete", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("story deleted", slog.String("story_id", storyID.String()))
	return nil
}

func (s *storyService) ListDue(ctx context.Context, ownerID uuid.UUID, now time.Time) ([]DueAssociation, error) {
	stories, err := s.stories.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, newServiceError("story", "list_due", err)
	}

	nowMs := now.UnixMilli()
	due := []DueAssociation{}
	for _, story := range stories {
		for _, i := range story.DueAssociations(nowMs) {
			due = append(due, DueAssociation{
				StoryID:          story.ID,
				Topic:            story.Topic,
				AssociationIndex: i,
				Association:      story.Associations[i],
			})
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		a, b := due[i].Association.Memory, due[j].Association.Memory
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		default:
			return a.NextDueAt < b.NextDueAt
		}
	})

	return due, nil
}
