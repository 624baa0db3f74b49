package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/api/shared"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
	"github.com/phrazzld/mnemo-api/internal/service"
)

// PlaylistHandler handles playlist requests.
type PlaylistHandler struct {
	playlists service.PlaylistService
	logger    *slog.Logger
}

// NewPlaylistHandler creates a new PlaylistHandler.
func NewPlaylistHandler(playlists service.PlaylistService, logger *slog.Logger) (*PlaylistHandler, error) {
	if playlists == nil {
		return nil, domain.NewValidationError("playlists", "cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PlaylistHandler{
		playlists: playlists,
		logger:    logger.With(slog.String("component", "playlist_handler")),
	}, nil
}

// ListPlaylists handles GET /playlists.
func (h *PlaylistHandler) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	playlists, err := h.playlists.ListPlaylists(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list playlists")
		return
	}
	if playlists == nil {
		playlists = []*domain.Playlist{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, playlists)
}

// CreatePlaylist handles POST /playlists.
func (h *PlaylistHandler) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	var req PlaylistRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	playlist, err := h.playlists.CreatePlaylist(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create playlist")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, playlist)
}

// GetPlaylist handles GET /playlists/{id}.
func (h *PlaylistHandler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	userID, playlistID, ok := handleUserIDAndPathUUID(w, r, "id",
		logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	playlist, err := h.playlists.GetPlaylist(r.Context(), userID, playlistID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get playlist")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, playlist)
}

// DeletePlaylist handles DELETE /playlists/{id}. The stories it referenced
// are left untouched.
func (h *PlaylistHandler) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	userID, playlistID, ok := handleUserIDAndPathUUID(w, r, "id",
		logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	if err := h.playlists.DeletePlaylist(r.Context(), userID, playlistID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete playlist")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddStory handles POST /playlists/{id}/stories/{storyId}.
func (h *PlaylistHandler) AddStory(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, h.playlists.AddStory, "Failed to add story to playlist")
}

// RemoveStory handles DELETE /playlists/{id}/stories/{storyId}.
func (h *PlaylistHandler) RemoveStory(w http.ResponseWriter, r *http.Request) {
	h.changeMembership(w, r, h.playlists.RemoveStory, "Failed to remove story from playlist")
}

type membershipFunc func(ctx context.Context, ownerID, playlistID, storyID uuid.UUID) error

func (h *PlaylistHandler) changeMembership(w http.ResponseWriter, r *http.Request, fn membershipFunc, failure string) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, playlistID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	storyID, err := getPathUUID(r, "storyId")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid storyId")
		return
	}

	if err := fn(r.Context(), userID, playlistID, storyID); err != nil {
		HandleAPIError(w, r, err, failure)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
