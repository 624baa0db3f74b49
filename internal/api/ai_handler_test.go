package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/generation"
	"github.com/phrazzld/mnemo-api/internal/mocks"
	"github.com/phrazzld/mnemo-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAIRouter(t *testing.T, gen generation.Generator, stories *mockStoryService, userID uuid.UUID) http.Handler {
	t.Helper()
	h, err := NewAIHandler(gen, stories, nil)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(withUser(userID))
	r.Post("/ai/mnemonic", h.GenerateMnemonic)
	r.Post("/ai/quiz", h.GenerateQuiz)
	return r
}

func TestAIHandler_NoGenerator(t *testing.T) {
	t.Parallel()

	router := newAIRouter(t, nil, &mockStoryService{}, uuid.New())

	rr := doRequest(t, router, http.MethodPost, "/ai/mnemonic", map[string]string{"text": "x"})
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = doRequest(t, router, http.MethodPost, "/ai/quiz", map[string]string{"storyId": uuid.NewString()})
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestAIHandler_GenerateMnemonic(t *testing.T) {
	t.Parallel()

	gen := &mocks.MockGenerator{Draft: &generation.MnemonicDraft{
		Topic:        "Beta blockers",
		Facts:        []string{"Propranolol is non-selective"},
		Story:        "A proper pirate...",
		Associations: []domain.Association{{Term: "Propranolol", Character: "Proper pirate"}},
	}}

	rr := doRequest(t, newAIRouter(t, gen, &mockStoryService{}, uuid.New()), http.MethodPost, "/ai/mnemonic",
		map[string]string{"text": "Beta blockers lecture notes", "language": "es"})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"Beta blockers lecture notes"}, gen.Texts)
	assert.Equal(t, []generation.Language{generation.LanguageSpanish}, gen.Languages)

	var draft generation.MnemonicDraft
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &draft))
	assert.Equal(t, "Beta blockers", draft.Topic)
}

func TestAIHandler_GenerateMnemonicErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       map[string]string
		genErr     error
		wantStatus int
	}{
		{name: "missing text", body: map[string]string{}, wantStatus: http.StatusUnprocessableEntity},
		{
			name:       "unsupported language",
			body:       map[string]string{"text": "x", "language": "fr"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "blocked",
			body:       map[string]string{"text": "x"},
			genErr:     generation.ErrContentBlocked,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "retries exhausted",
			body:       map[string]string{"text": "x"},
			genErr:     generation.ErrTransientFailure,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "bad model output",
			body:       map[string]string{"text": "x"},
			genErr:     generation.ErrInvalidResponse,
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			gen := &mocks.MockGenerator{Err: tc.genErr, Draft: &generation.MnemonicDraft{}}
			rr := doRequest(t, newAIRouter(t, gen, &mockStoryService{}, uuid.New()),
				http.MethodPost, "/ai/mnemonic", tc.body)
			assert.Equal(t, tc.wantStatus, rr.Code)
		})
	}
}

func TestAIHandler_GenerateQuiz(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	storyID := uuid.New()
	story := &domain.Story{
		ID: storyID, OwnerID: userID, Topic: "Cranial nerves",
		Associations: []domain.Association{{Term: "Vagus"}},
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		stories := &mockStoryService{}
		stories.On("GetStory", mock.Anything, userID, storyID).Return(story, nil)
		gen := &mocks.MockGenerator{Questions: []generation.QuizQuestion{{
			AssociationIndex: 0, Question: "Which nerve wanders?",
			Options: []string{"Vagus", "Optic"}, CorrectOptionIndex: 0,
		}}}

		rr := doRequest(t, newAIRouter(t, gen, stories, userID), http.MethodPost, "/ai/quiz",
			map[string]string{"storyId": storyID.String()})

		require.Equal(t, http.StatusOK, rr.Code)
		var resp QuizResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Questions, 1)
		assert.Equal(t, "Which nerve wanders?", resp.Questions[0].Question)
	})

	t.Run("story of another user", func(t *testing.T) {
		t.Parallel()

		stories := &mockStoryService{}
		stories.On("GetStory", mock.Anything, userID, storyID).Return(nil, store.ErrStoryNotFound)
		gen := &mocks.MockGenerator{}

		rr := doRequest(t, newAIRouter(t, gen, stories, userID), http.MethodPost, "/ai/quiz",
			map[string]string{"storyId": storyID.String()})

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Empty(t, gen.Texts)
	})

	t.Run("missing story id", func(t *testing.T) {
		t.Parallel()

		rr := doRequest(t, newAIRouter(t, &mocks.MockGenerator{}, &mockStoryService{}, userID),
			http.MethodPost, "/ai/quiz", map[string]string{})
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})
}
