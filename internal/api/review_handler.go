package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/mnemo-api/internal/api/shared"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
	"github.com/phrazzld/mnemo-api/internal/service/review"
)

// ReviewHandler handles review submissions.
type ReviewHandler struct {
	reviews review.Service
	logger  *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviews review.Service, logger *slog.Logger) (*ReviewHandler, error) {
	if reviews == nil {
		return nil, domain.NewValidationError("reviews", "cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ReviewHandler{
		reviews: reviews,
		logger:  logger.With(slog.String("component", "review_handler")),
	}, nil
}

// SubmitReview handles POST /stories/{id}/review. It responds with the full
// updated story.
//
//	200: story updated
//	400: malformed id or association index out of range
//	404: story missing or owned by another user
//	422: quality outside [0,5] or missing body fields
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, storyID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req ReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	story, err := h.reviews.SubmitReview(r.Context(), userID, storyID,
		*req.AssociationIndex, domain.Quality(*req.Quality))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit review")
		return
	}

	log.Debug("review submitted",
		slog.String("story_id", storyID.String()),
		slog.Int("association_index", *req.AssociationIndex),
		slog.Int("quality", *req.Quality))
	shared.RespondWithJSON(w, r, http.StatusOK, story)
}
