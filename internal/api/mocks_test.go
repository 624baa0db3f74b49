package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/api/shared"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/service"
	"github.com/phrazzld/mnemo-api/internal/service/review"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserService struct{ mock.Mock }

var _ service.UserService = (*mockUserService)(nil)

func (m *mockUserService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	args := m.Called(ctx, username, email, password)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserService) CreateGuest(ctx context.Context) (*domain.User, error) {
	args := m.Called(ctx)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

type mockStoryService struct{ mock.Mock }

var _ service.StoryService = (*mockStoryService)(nil)

func (m *mockStoryService) ListStories(ctx context.Context, ownerID uuid.UUID) ([]*domain.Story, error) {
	args := m.Called(ctx, ownerID)
	stories, _ := args.Get(0).([]*domain.Story)
	return stories, args.Error(1)
}

func (m *mockStoryService) GetStory(ctx context.Context, ownerID, storyID uuid.UUID) (*domain.Story, error) {
	args := m.Called(ctx, ownerID, storyID)
	story, _ := args.Get(0).(*domain.Story)
	return story, args.Error(1)
}

func (m *mockStoryService) CreateStory(
	ctx context.Context,
	ownerID uuid.UUID,
	input service.StoryInput,
) (*domain.Story, error) {
	args := m.Called(ctx, ownerID, input)
	story, _ := args.Get(0).(*domain.Story)
	return story, args.Error(1)
}

func (m *mockStoryService) UpdateStory(
	ctx context.Context,
	ownerID, storyID uuid.UUID,
	input service.StoryInput,
) (*domain.Story, error) {
	args := m.Called(ctx, ownerID, storyID, input)
	story, _ := args.Get(0).(*domain.Story)
	return story, args.Error(1)
}

func (m *mockStoryService) DeleteStory(ctx context.Context, ownerID, storyID uuid.UUID) error {
	return m.Called(ctx, ownerID, storyID).Error(0)
}

func (m *mockStoryService) ListDue(
	ctx context.Context,
	ownerID uuid.UUID,
	now time.Time,
) ([]service.DueAssociation, error) {
	args := m.Called(ctx, ownerID, now)
	due, _ := args.Get(0).([]service.DueAssociation)
	return due, args.Error(1)
}

type mockPlaylistService struct{ mock.Mock }

var _ service.PlaylistService = (*mockPlaylistService)(nil)

func (m *mockPlaylistService) ListPlaylists(ctx context.Context, ownerID uuid.UUID) ([]*domain.Playlist, error) {
	args := m.Called(ctx, ownerID)
	playlists, _ := args.Get(0).([]*domain.Playlist)
	return playlists, args.Error(1)
}

func (m *mockPlaylistService) GetPlaylist(ctx context.Context, ownerID, playlistID uuid.UUID) (*domain.Playlist, error) {
	args := m.Called(ctx, ownerID, playlistID)
	playlist, _ := args.Get(0).(*domain.Playlist)
	return playlist, args.Error(1)
}

func (m *mockPlaylistService) CreatePlaylist(
	ctx context.Context,
	ownerID uuid.UUID,
	name, description string,
) (*domain.Playlist, error) {
	args := m.Called(ctx, ownerID, name, description)
	playlist, _ := args.Get(0).(*domain.Playlist)
	return playlist, args.Error(1)
}

func (m *mockPlaylistService) DeletePlaylist(ctx context.Context, ownerID, playlistID uuid.UUID) error {
	return m.Called(ctx, ownerID, playlistID).Error(0)
}

func (m *mockPlaylistService) AddStory(ctx context.Context, ownerID, playlistID, storyID uuid.UUID) error {
	return m.Called(ctx, ownerID, playlistID, storyID).Error(0)
}

func (m *mockPlaylistService) RemoveStory(ctx context.Context, ownerID, playlistID, storyID uuid.UUID) error {
	return m.Called(ctx, ownerID, playlistID, storyID).Error(0)
}

type mockReviewService struct{ mock.Mock }

var _ review.Service = (*mockReviewService)(nil)

func (m *mockReviewService) SubmitReview(
	ctx context.Context,
	ownerID, storyID uuid.UUID,
	index int,
	quality domain.Quality,
) (*domain.Story, error) {
	args := m.Called(ctx, ownerID, storyID, index, quality)
	story, _ := args.Get(0).(*domain.Story)
	return story, args.Error(1)
}

// withUser marks every request as authenticated by userID.
func withUser(userID uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(shared.WithUserID(r.Context(), userID)))
		})
	}
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}
