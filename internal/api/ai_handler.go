package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/mnemo-api/internal/api/shared"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/generation"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
	"github.com/phrazzld/mnemo-api/internal/service"
)

// AIHandler exposes mnemonic and quiz generation. A nil generator is allowed;
// every request is then answered with 503.
type AIHandler struct {
	generator generation.Generator
	stories   service.StoryService
	logger    *slog.Logger
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(
	generator generation.Generator,
	stories service.StoryService,
	logger *slog.Logger,
) (*AIHandler, error) {
	if stories == nil {
		return nil, domain.NewValidationError("stories", "cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AIHandler{
		generator: generator,
		stories:   stories,
		logger:    logger.With(slog.String("component", "ai_handler")),
	}, nil
}

// GenerateMnemonic handles POST /ai/mnemonic and returns an unsaved draft.
func (h *AIHandler) GenerateMnemonic(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if _, ok := requireUserID(w, r, log); !ok {
		return
	}
	if h.generator == nil {
		HandleAPIError(w, r, generation.ErrUnavailable, "")
		return
	}

	var req MnemonicRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	lang, err := generation.ParseLanguage(req.Language)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	draft, err := h.generator.GenerateMnemonic(r.Context(), req.Text, lang)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate mnemonic")
		return
	}

	log.Debug("mnemonic generated",
		slog.String("topic", draft.Topic),
		slog.Int("associations", len(draft.Associations)))
	shared.RespondWithJSON(w, r, http.StatusOK, draft)
}

// GenerateQuiz handles POST /ai/quiz for one of the caller's stories.
func (h *AIHandler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}
	if h.generator == nil {
		HandleAPIError(w, r, generation.ErrUnavailable, "")
		return
	}

	var req QuizRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	lang, err := generation.ParseLanguage(req.Language)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	story, err := h.stories.GetStory(r.Context(), userID, req.StoryID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get story")
		return
	}

	questions, err := h.generator.GenerateQuiz(r.Context(), story, lang)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate quiz")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, QuizResponse{Questions: questions})
}
