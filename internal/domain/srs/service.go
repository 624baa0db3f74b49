package srs

import (
	"time"

	"github.com/phrazzld/mnemo-api/internal/domain"
)

// Service defines the validated boundary around the scheduling algorithm.
// Implementations are stateless and safe for concurrent use.
type Service interface {
	// Review validates quality and the previous state, then computes the next
	// state. Malformed input yields a *domain.ValidationError and is never clamped.
	Review(previous *domain.MemoryState, quality domain.Quality, now time.Time) (*domain.MemoryState, error)

	// ApplyReview reviews the association at index and returns a copy of story
	// in which only that association's memory differs. It never persists anything.
	// An index outside the association list yields a *domain.OutOfRangeError.
	ApplyReview(story *domain.Story, index int, quality domain.Quality, now time.Time) (*domain.Story, error)
}

// scheduler is the standard implementation of the Service interface
type scheduler struct {
	params Params
}

var _ Service = (*scheduler)(nil)

// NewDefaultService creates a scheduler with DefaultParams.
func NewDefaultService() Service {
	return &scheduler{params: DefaultParams()}
}

// NewScheduler creates a scheduler with custom parameters.
func NewScheduler(params Params) (Service, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &scheduler{params: params}, nil
}

func (s *scheduler) Review(
	previous *domain.MemoryState,
	quality domain.Quality,
	now time.Time,
) (*domain.MemoryState, error) {
	if err := quality.Validate(); err != nil {
		return nil, err
	}

	if previous != nil {
		if err := previous.Validate(); err != nil {
			return nil, err
		}
	}

	nowMs := now.UnixMilli()
	if nowMs < 0 || nowMs > domain.MaxReviewedAt {
		return nil, domain.NewValidationError("now", "must be a representable epoch millisecond timestamp")
	}

	state := next(previous, quality, nowMs, s.params)
	return &state, nil
}

func (s *scheduler) ApplyReview(
	story *domain.Story,
	index int,
	quality domain.Quality,
	now time.Time,
) (*domain.Story, error) {
	if story == nil {
		return nil, domain.NewValidationError("story", "cannot be nil")
	}

	if index < 0 || index >= len(story.Associations) {
		return nil, &domain.OutOfRangeError{Index: index, Length: len(story.Associations)}
	}

	state, err := s.Review(story.Associations[index].Memory, quality, now)
	if err != nil {
		return nil, err
	}

	updated := story.Clone()
	updated.Associations[index].Memory = state
	return updated, nil
}
