package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/service"
	"github.com/phrazzld/mnemo-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.UnixMilli(1_700_000_000_000)

func newStoryRouter(t *testing.T, svc *mockStoryService, userID uuid.UUID) http.Handler {
	t.Helper()
	h, err := NewStoryHandler(svc, nil)
	require.NoError(t, err)
	h.now = func() time.Time { return fixedNow }

	r := chi.NewRouter()
	r.Use(withUser(userID))
	r.Get("/stories", h.ListStories)
	r.Post("/stories", h.CreateStory)
	r.Get("/stories/{id}", h.GetStory)
	r.Put("/stories/{id}", h.UpdateStory)
	r.Delete("/stories/{id}", h.DeleteStory)
	r.Get("/reviews/due", h.ListDue)
	return r
}

func TestStoryHandler_ListStoriesEmpty(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	svc := &mockStoryService{}
	svc.On("ListStories", mock.Anything, userID).Return(nil, nil)

	rr := doRequest(t, newStoryRouter(t, svc, userID), http.MethodGet, "/stories", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestStoryHandler_CreateStory(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	svc := &mockStoryService{}
	created := &domain.Story{ID: uuid.New(), OwnerID: userID, Topic: "Krebs cycle"}

	svc.On("CreateStory", mock.Anything, userID, mock.MatchedBy(func(in service.StoryInput) bool {
		return in.Topic == "Krebs cycle" && len(in.Associations) == 1 && in.Associations[0].Term == "Citrate"
	})).Return(created, nil)

	body := map[string]any{
		"topic":        "Krebs cycle",
		"facts":        []string{"Citrate is formed first"},
		"narrative":    "A city rate collector...",
		"associations": []map[string]any{{"term": "Citrate", "character": "City rate collector"}},
	}
	rr := doRequest(t, newStoryRouter(t, svc, userID), http.MethodPost, "/stories", body)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var got domain.Story
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
	svc.AssertExpectations(t)
}

func TestStoryHandler_CreateStoryRequiresTopic(t *testing.T) {
	t.Parallel()

	svc := &mockStoryService{}
	rr := doRequest(t, newStoryRouter(t, svc, uuid.New()), http.MethodPost, "/stories",
		map[string]any{"facts": []string{"x"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "Invalid topic: is required", decodeError(t, rr).Error)
	svc.AssertNotCalled(t, "CreateStory")
}

func TestStoryHandler_GetStory(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	storyID := uuid.New()

	tests := []struct {
		name       string
		story      *domain.Story
		err        error
		wantStatus int
	}{
		{name: "found", story: &domain.Story{ID: storyID, OwnerID: userID, Topic: "t"}, wantStatus: http.StatusOK},
		{name: "not found", err: store.ErrStoryNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockStoryService{}
			svc.On("GetStory", mock.Anything, userID, storyID).Return(tc.story, tc.err)

			rr := doRequest(t, newStoryRouter(t, svc, userID), http.MethodGet, "/stories/"+storyID.String(), nil)
			assert.Equal(t, tc.wantStatus, rr.Code)
		})
	}
}

func TestStoryHandler_UpdateStory(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	storyID := uuid.New()

	t.Run("id mismatch", func(t *testing.T) {
		t.Parallel()

		svc := &mockStoryService{}
		rr := doRequest(t, newStoryRouter(t, svc, userID), http.MethodPut, "/stories/"+storyID.String(),
			map[string]any{"id": uuid.NewString(), "topic": "t"})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "ID mismatch", decodeError(t, rr).Error)
		svc.AssertNotCalled(t, "UpdateStory")
	})

	t.Run("matching id", func(t *testing.T) {
		t.Parallel()

		svc := &mockStoryService{}
		updated := &domain.Story{ID: storyID, OwnerID: userID, Topic: "renamed"}
		svc.On("UpdateStory", mock.Anything, userID, storyID, mock.AnythingOfType("service.StoryInput")).
			Return(updated, nil)

		rr := doRequest(t, newStoryRouter(t, svc, userID), http.MethodPut, "/stories/"+storyID.String(),
			map[string]any{"id": storyID.String(), "topic": "renamed"})

		assert.Equal(t, http.StatusOK, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("malformed memory state", func(t *testing.T) {
		t.Parallel()

		svc := &mockStoryService{}
		svc.On("UpdateStory", mock.Anything, userID, storyID, mock.Anything).
			Return(nil, domain.NewValidationError("associations[0].memory.ease", "must be a finite number of at least 1.3"))

		rr := doRequest(t, newStoryRouter(t, svc, userID), http.MethodPut, "/stories/"+storyID.String(),
			map[string]any{"topic": "t"})

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})
}

func TestStoryHandler_DeleteStory(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	storyID := uuid.New()
	svc := &mockStoryService{}
	svc.On("DeleteStory", mock.Anything, userID, storyID).Return(nil)

	rr := doRequest(t, newStoryRouter(t, svc, userID), http.MethodDelete, "/stories/"+storyID.String(), nil)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestStoryHandler_ListDue(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	storyID := uuid.New()
	svc := &mockStoryService{}
	svc.On("ListDue", mock.Anything, userID, fixedNow).Return([]service.DueAssociation{{
		StoryID:          storyID,
		Topic:            "Cranial nerves",
		AssociationIndex: 2,
		Association:      domain.Association{Term: "Trochlear"},
	}}, nil)

	rr := doRequest(t, newStoryRouter(t, svc, userID), http.MethodGet, "/reviews/due", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, storyID.String(), got[0]["storyId"])
	assert.Equal(t, float64(2), got[0]["associationIndex"])
}
