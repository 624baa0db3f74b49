package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/mnemo-api/internal/api/shared"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
	"github.com/phrazzld/mnemo-api/internal/service"
)

// StoryHandler handles story CRUD and the due-review listing.
type StoryHandler struct {
	stories service.StoryService
	logger  *slog.Logger
	now     func() time.Time
}

// NewStoryHandler creates a new StoryHandler.
func NewStoryHandler(stories service.StoryService, logger *slog.Logger) (*StoryHandler, error) {
	if stories == nil {
		return nil, domain.NewValidationError("stories", "cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &StoryHandler{
		stories: stories,
		logger:  logger.With(slog.String("component", "story_handler")),
		now:     time.Now,
	}, nil
}

// ListStories handles GET /stories.
func (h *StoryHandler) ListStories(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	stories, err := h.stories.ListStories(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list stories")
		return
	}
	if stories == nil {
		stories = []*domain.Story{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stories)
}

// CreateStory handles POST /stories.
func (h *StoryHandler) CreateStory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req StoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	story, err := h.stories.CreateStory(r.Context(), userID, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create story")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, story)
}

// GetStory handles GET /stories/{id}.
func (h *StoryHandler) GetStory(w http.ResponseWriter, r *http.Request) {
	userID, storyID, ok := handleUserIDAndPathUUID(w, r, "id",
		logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	story, err := h.stories.GetStory(r.Context(), userID, storyID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get story")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, story)
}

// UpdateStory handles PUT /stories/{id}. A body id that differs from the
// path is rejected with 400.
func (h *StoryHandler) UpdateStory(w http.ResponseWriter, r *http.Request) {
	userID, storyID, ok := handleUserIDAndPathUUID(w, r, "id",
		logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	var req StoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.ID != nil && *req.ID != storyID {
		HandleAPIError(w, r, service.ErrIDMismatch, "")
		return
	}

	story, err := h.stories.UpdateStory(r.Context(), userID, storyID, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update story")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, story)
}

// DeleteStory handles DELETE /stories/{id}.
func (h *StoryHandler) DeleteStory(w http.ResponseWriter, r *http.Request) {
	userID, storyID, ok := handleUserIDAndPathUUID(w, r, "id",
		logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	if err := h.stories.DeleteStory(r.Context(), userID, storyID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete story")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListDue handles GET /reviews/due.
func (h *StoryHandler) ListDue(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	due, err := h.stories.ListDue(r.Context(), userID, h.now())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list due reviews")
		return
	}
	if due == nil {
		due = []service.DueAssociation{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, due)
}
