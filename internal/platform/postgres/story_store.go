package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/platform/database"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
	"github.com/phrazzld/mnemo-api/internal/store"
)

const storyColumns = `id, owner_id, topic, facts, narrative, associations, visual_prompt,
	generated_image, created_at, updated_at`

// PostgresStoryStore implements the store.StoryStore interface
// using a PostgreSQL database as the storage backend.
type PostgresStoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStoryStore creates a new PostgreSQL implementation of the StoryStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresStoryStore(db store.DBTX, logger *slog.Logger) *PostgresStoryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "story_store")),
	}
}

// Ensure PostgresStoryStore implements store.StoryStore interface
var _ store.StoryStore = (*PostgresStoryStore)(nil)

// WithTx implements store.StoryStore.WithTx
func (s *PostgresStoryStore) WithTx(tx *sql.Tx) store.StoryStore {
	return &PostgresStoryStore{db: tx, logger: s.logger}
}

// Create implements store.StoryStore.Create
// Returns store.ErrUserNotFound if the owner doesn't exist.
func (s *PostgresStoryStore) Create(ctx context.Context, story *domain.Story) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := story.Validate(); err != nil {
		log.Warn("story validation failed during create",
			slog.String("error", err.Error()),
			slog.String("story_id", story.ID.String()))
		return err
	}

	cols, err := database.EncodeStoryColumns(story)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO stories (`+storyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		story.ID, story.OwnerID, story.Topic, string(cols.Facts), story.Narrative,
		string(cols.Associations), story.VisualPrompt, nullString(story.GeneratedImage),
		story.CreatedAt, story.UpdatedAt,
	)
	if err != nil {
		err = MapError(err)
		if errors.Is(err, store.ErrUserNotFound) {
			log.Warn("story owner does not exist",
				slog.String("story_id", story.ID.String()),
				slog.String("owner_id", story.OwnerID.String()))
			return err
		}
		log.Error("failed to create story",
			slog.String("error", err.Error()),
			slog.String("story_id", story.ID.String()))
		return err
	}

	log.Debug("story created", slog.String("story_id", story.ID.String()))
	return nil
}

// GetByID implements store.StoryStore.GetByID
func (s *PostgresStoryStore) GetByID(ctx context.Context, ownerID, storyID uuid.UUID) (*domain.Story, error) {
	return s.get(ctx, ownerID, storyID, "")
}

// GetForUpdate implements store.StoryStore.GetForUpdate. The row stays
// locked until the surrounding transaction commits or rolls back.
func (s *PostgresStoryStore) GetForUpdate(ctx context.Context, ownerID, storyID uuid.UUID) (*domain.Story, error) {
	return s.get(ctx, ownerID, storyID, " FOR UPDATE")
}

func (s *PostgresStoryStore) get(ctx context.Context, ownerID, storyID uuid.UUID, lock string) (*domain.Story, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx,
		`SELECT `+storyColumns+` FROM stories WHERE id = $1 AND owner_id = $2`+lock,
		storyID, ownerID)

	story, err := scanStory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("story not found", slog.String("story_id", storyID.String()))
			return nil, store.ErrStoryNotFound
		}
		log.Error("failed to get story",
			slog.String("error", err.Error()),
			slog.String("story_id", storyID.String()))
		return nil, err
	}
	return story, nil
}

// ListByOwner implements store.StoryStore.ListByOwner
func (s *PostgresStoryStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Story, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+storyColumns+` FROM stories WHERE owner_id = $1 ORDER BY created_at DESC, id`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stories := []*domain.Story{}
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, story)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stories: %w", err)
	}
	return stories, nil
}

// Update implements store.StoryStore.Update
func (s *PostgresStoryStore) Update(ctx context.Context, story *domain.Story) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := story.Validate(); err != nil {
		return err
	}

	cols, err := database.EncodeStoryColumns(story)
	if err != nil {
		return err
	}

	story.UpdatedAt = time.Now().UTC().UnixMilli()
	result, err := s.db.ExecContext(ctx, `
		UPDATE stories
		SET topic = $1, facts = $2, narrative = $3, associations = $4, visual_prompt = $5,
			generated_image = $6, updated_at = $7
		WHERE id = $8 AND owner_id = $9`,
		story.Topic, string(cols.Facts), story.Narrative, string(cols.Associations),
		story.VisualPrompt, nullString(story.GeneratedImage), story.UpdatedAt,
		story.ID, story.OwnerID,
	)
	if err != nil {
		log.Error("failed to update story",
			slog.String("error", err.Error()),
			slog.String("story_id", story.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrStoryNotFound)
}

// Delete implements store.StoryStore.Delete
// Playlist links are removed by ON DELETE CASCADE.
func (s *PostgresStoryStore) Delete(ctx context.Context, ownerID, storyID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM stories WHERE id = $1 AND owner_id = $2`, storyID, ownerID)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrStoryNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStory(row rowScanner) (*domain.Story, error) {
	var (
		story domain.Story
		facts []byte
		assoc []byte
		image sql.NullString
	)
	err := row.Scan(
		&story.ID, &story.OwnerID, &story.Topic, &facts, &story.Narrative,
		&assoc, &story.VisualPrompt, &image, &story.CreatedAt, &story.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	cols := database.StoryColumns{Facts: facts, Associations: assoc}
	if err := cols.DecodeInto(&story); err != nil {
		return nil, err
	}
	if image.Valid {
		story.GeneratedImage = &image.String
	}
	return &story, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
