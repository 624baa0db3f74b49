package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newReviewRouter(t *testing.T, svc *mockReviewService, userID uuid.UUID) http.Handler {
	t.Helper()
	h, err := NewReviewHandler(svc, nil)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(withUser(userID))
	r.Post("/stories/{id}/review", h.SubmitReview)
	return r
}

func TestNewReviewHandler_NilService(t *testing.T) {
	_, err := NewReviewHandler(nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSubmitReview(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	storyID := uuid.New()
	path := fmt.Sprintf("/stories/%s/review", storyID)

	reviewed := &domain.Story{
		ID:      storyID,
		OwnerID: userID,
		Topic:   "Cranial nerves",
		Associations: []domain.Association{{
			Term: "Olfactory",
			Memory: &domain.MemoryState{
				Repetitions: 1, Ease: 2.6, IntervalDays: 1,
				LastReviewedAt: 1_700_000_000_000, NextDueAt: 1_700_086_400_000,
			},
		}},
	}

	tests := []struct {
		name       string
		body       any
		serviceErr error
		callsSvc   bool
		wantStatus int
		wantError  string
	}{
		{
			name:       "success",
			body:       map[string]int{"associationIndex": 0, "quality": 5},
			callsSvc:   true,
			wantStatus: http.StatusOK,
		},
		{
			name:       "story not found",
			body:       map[string]int{"associationIndex": 0, "quality": 5},
			serviceErr: store.ErrStoryNotFound,
			callsSvc:   true,
			wantStatus: http.StatusNotFound,
			wantError:  "Story not found",
		},
		{
			name:       "index out of range",
			body:       map[string]int{"associationIndex": 3, "quality": 4},
			serviceErr: &domain.OutOfRangeError{Index: 3, Length: 1},
			callsSvc:   true,
			wantStatus: http.StatusBadRequest,
			wantError:  "Association index 3 out of range for 1 associations",
		},
		{
			name:       "quality out of range",
			body:       map[string]int{"associationIndex": 0, "quality": 6},
			serviceErr: domain.Quality(6).Validate(),
			callsSvc:   true,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "Invalid quality: must be between 0 and 5, got 6",
		},
		{
			name:       "storage failure",
			body:       map[string]int{"associationIndex": 0, "quality": 4},
			serviceErr: fmt.Errorf("commit: %w", errors.New("disk I/O error")),
			callsSvc:   true,
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to submit review",
		},
		{
			name:       "missing quality",
			body:       map[string]int{"associationIndex": 0},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "Invalid quality: is required",
		},
		{
			name:       "quality of wrong type",
			body:       `{"associationIndex": 0, "quality": "good"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "Invalid quality: must be a int",
		},
		{
			name:       "malformed json",
			body:       `{"associationIndex": 0,`,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "Invalid body: must be valid JSON",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockReviewService{}
			if tc.callsSvc {
				body := tc.body.(map[string]int)
				var story *domain.Story
				if tc.serviceErr == nil {
					story = reviewed
				}
				svc.On("SubmitReview", mock.Anything, userID, storyID,
					body["associationIndex"], domain.Quality(body["quality"])).
					Return(story, tc.serviceErr).Once()
			}

			rr := doRequest(t, newReviewRouter(t, svc, userID), http.MethodPost, path, tc.body)

			assert.Equal(t, tc.wantStatus, rr.Code)
			if tc.wantError != "" {
				assert.Equal(t, tc.wantError, decodeError(t, rr).Error)
			} else {
				var got domain.Story
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
				assert.Equal(t, storyID, got.ID)
				require.NotNil(t, got.Associations[0].Memory)
				assert.Equal(t, 1, got.Associations[0].Memory.Repetitions)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestSubmitReview_InvalidStoryID(t *testing.T) {
	svc := &mockReviewService{}
	rr := doRequest(t, newReviewRouter(t, svc, uuid.New()), http.MethodPost,
		"/stories/not-a-uuid/review", map[string]int{"associationIndex": 0, "quality": 3})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "SubmitReview")
}

func TestSubmitReview_Unauthenticated(t *testing.T) {
	h, err := NewReviewHandler(&mockReviewService{}, nil)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Post("/stories/{id}/review", h.SubmitReview)

	rr := doRequest(t, r, http.MethodPost, "/stories/"+uuid.NewString()+"/review",
		map[string]int{"associationIndex": 0, "quality": 3})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
