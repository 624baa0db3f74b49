package review

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/domain/srs"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
	"github.com/phrazzld/mnemo-api/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/phrazzld/mnemo-api/internal/service/review"

// Service records reviews of story associations.
type Service interface {
	// SubmitReview applies a quality rating to the association at index of
	// the owner's story and returns the saved story.
	//
	// Errors: a *domain.ValidationError for a quality outside 0-5, checked
	// before the store is touched; store.ErrStoryNotFound when the story does
	// not exist or belongs to someone else; a *domain.OutOfRangeError for a
	// bad index; otherwise the store error, wrapped. A failed review is never
	// retried, so a rating is applied at most once.
	SubmitReview(
		ctx context.Context,
		ownerID, storyID uuid.UUID,
		index int,
		quality domain.Quality,
	) (*domain.Story, error)
}

type service struct {
	stories   store.StoryStore
	db        *sql.DB
	scheduler srs.Service
	tracer    trace.Tracer
	reviews   metric.Int64Counter
	logger    *slog.Logger
	now       func() time.Time
}

var _ Service = (*service)(nil)

// NewService creates the review workflow. A nil tracer or meter provider
// falls back to the OpenTelemetry globals.
func NewService(
	stories store.StoryStore,
	db *sql.DB,
	scheduler srs.Service,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
	logger *slog.Logger,
) (Service, error) {
	if stories == nil {
		return nil, domain.NewValidationError("stories", "cannot be nil")
	}
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil")
	}
	if scheduler == nil {
		return nil, domain.NewValidationError("scheduler", "cannot be nil")
	}
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	if logger == nil {
		logger = slog.Default()
	}

	reviews, err := mp.Meter(instrumentationName).Int64Counter("mnemo.reviews",
		metric.WithDescription("Number of association reviews recorded"),
		metric.WithUnit("{review}"))
	if err != nil {
		return nil, err
	}

	return &service{
		stories:   stories,
		db:        db,
		scheduler: scheduler,
		tracer:    tp.Tracer(instrumentationName),
		reviews:   reviews,
		logger:    logger.With(slog.String("component", "review_service")),
		now:       time.Now,
	}, nil
}

func (s *service) SubmitReview(
	ctx context.Context,
	ownerID, storyID uuid.UUID,
	index int,
	quality domain.Quality,
) (*domain.Story, error) {
	ctx, span := s.tracer.Start(ctx, "review.submit", trace.WithAttributes(
		attribute.String("story.id", storyID.String()),
		attribute.Int("association.index", index),
		attribute.Int("quality", int(quality)),
	))
	defer span.End()

	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("story_id", storyID.String()),
		slog.Int("association_index", index))

	if err := quality.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid quality")
		return nil, err
	}

	var saved *domain.Story
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStories := s.stories.WithTx(tx)

		story, err := txStories.GetForUpdate(ctx, ownerID, storyID)
		if err != nil {
			return err
		}

		next, err := s.scheduler.ApplyReview(story, index, quality, s.now())
		if err != nil {
			return err
		}

		if err := txStories.Update(ctx, next); err != nil {
			return err
		}
		saved = next
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "review failed")
		if store.IsNotFoundError(err) {
			log.Debug("review of unknown story")
		} else {
			log.Warn("review failed", slog.String("error", err.Error()))
		}
		return nil, err
	}

	memory := saved.Associations[index].Memory
	s.reviews.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("quality", int(quality)),
		attribute.Bool("passing", quality.Passing()),
	))
	span.SetAttributes(
		attribute.Int("memory.repetitions", memory.Repetitions),
		attribute.Int("memory.interval_days", memory.IntervalDays),
	)

	log.Info("review recorded",
		slog.Int("quality", int(quality)),
		slog.Int("interval_days", memory.IntervalDays),
		slog.Int64("next_due_at", memory.NextDueAt))

	return saved, nil
}
