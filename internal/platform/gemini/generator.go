package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/mnemo-api/internal/config"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/generation"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
	"google.golang.org/genai"
)

const responseMIMEType = "application/json"

// contentGenerator is the subset of *genai.Models used by Generator.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Generator implements generation.Generator using the Gemini API.
type Generator struct {
	models     contentGenerator
	model      string
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand

	// sleep waits between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Gemini client for cfg. It returns
// generation.ErrInvalidConfig when no API key is configured.
func NewGenerator(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Generator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newGenerator(client.Models, cfg, logger), nil
}

func newGenerator(models contentGenerator, cfg config.LLMConfig, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	delay := time.Duration(cfg.RetryDelaySeconds) * time.Second
	if delay <= 0 {
		delay = 2 * time.Second
	}

	return &Generator{
		models:     models,
		model:      cfg.ModelName,
		maxRetries: maxRetries,
		baseDelay:  delay,
		logger:     log.With(slog.String("component", "gemini_generator")),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:      sleepContext,
	}
}

// GenerateMnemonic implements generation.Generator.
func (g *Generator) GenerateMnemonic(
	ctx context.Context,
	text string,
	lang generation.Language,
) (*generation.MnemonicDraft, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewValidationError("text", "cannot be empty")
	}

	prompt, err := renderMnemonicPrompt(text, lang)
	if err != nil {
		return nil, err
	}

	var resp mnemonicSchema
	if err := g.generateJSON(ctx, "mnemonic", prompt, &resp); err != nil {
		return nil, err
	}

	if resp.Story == "" {
		return nil, fmt.Errorf("%w: response has no story", generation.ErrInvalidResponse)
	}
	if len(resp.Associations) == 0 {
		return nil, fmt.Errorf("%w: response has no associations", generation.ErrInvalidResponse)
	}

	draft := &generation.MnemonicDraft{
		Topic:        resp.Topic,
		Facts:        resp.Facts,
		Story:        resp.Story,
		VisualPrompt: resp.VisualPrompt,
		Associations: make([]domain.Association, 0, len(resp.Associations)),
	}
	if draft.Facts == nil {
		draft.Facts = []string{}
	}
	for i, a := range resp.Associations {
		if a.Term == "" || a.Character == "" {
			return nil, fmt.Errorf("%w: association %d is incomplete", generation.ErrInvalidResponse, i)
		}
		draft.Associations = append(draft.Associations, domain.Association{
			Term:        a.Term,
			Character:   a.Character,
			Explanation: a.Explanation,
		})
	}

	return draft, nil
}

// GenerateQuiz implements generation.Generator. Options of every question are
// shuffled so the correct answer is not always in the same position.
func (g *Generator) GenerateQuiz(
	ctx context.Context,
	story *domain.Story,
	lang generation.Language,
) ([]generation.QuizQuestion, error) {
	if story == nil || len(story.Associations) == 0 {
		return nil, domain.NewValidationError("associations", "story has nothing to quiz")
	}

	prompt, err := renderQuizPrompt(story, lang)
	if err != nil {
		return nil, err
	}

	var resp quizSchema
	if err := g.generateJSON(ctx, "quiz", prompt, &resp); err != nil {
		return nil, err
	}
	if len(resp.Questions) == 0 {
		return nil, fmt.Errorf("%w: response has no questions", generation.ErrInvalidResponse)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range resp.Questions {
		if err := resp.Questions[i].Validate(len(story.Associations)); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", generation.ErrInvalidResponse, i, err)
		}
		generation.ShuffleOptions(&resp.Questions[i], g.rng)
	}

	return resp.Questions, nil
}

// generateJSON calls the model with retries and decodes its JSON answer into out.
func (g *Generator) generateJSON(ctx context.Context, kind, prompt string, out any) error {
	log := logger.FromContextOrDefault(ctx, g.logger).With(slog.String("request_kind", kind))

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}
	cfg := &genai.GenerateContentConfig{ResponseMIMEType: responseMIMEType}

	for attempt := 0; ; attempt++ {
		log.DebugContext(ctx, "calling gemini",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", g.maxRetries+1))

		resp, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
		if err == nil {
			text, err := responseText(resp)
			if err != nil {
				log.WarnContext(ctx, "unusable gemini response", slog.Any("error", err))
				return err
			}
			if err := json.Unmarshal([]byte(text), out); err != nil {
				return fmt.Errorf("%w: failed to parse JSON response: %v", generation.ErrInvalidResponse, err)
			}
			return nil
		}

		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
		if !isTransient(err) {
			log.ErrorContext(ctx, "gemini call failed", slog.Any("error", err))
			return fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
		}
		if attempt >= g.maxRetries {
			log.ErrorContext(ctx, "gemini retries exhausted",
				slog.Int("max_retries", g.maxRetries),
				slog.Any("error", err))
			return fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				generation.ErrTransientFailure, g.maxRetries, err)
		}

		delay := g.backoff(attempt)
		log.WarnContext(ctx, "gemini call failed, retrying",
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.Any("error", err))
		if err := g.sleep(ctx, delay); err != nil {
			return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}
	}
}

// backoff returns baseDelay * 2^attempt scaled by a jitter factor in [0.5, 1).
func (g *Generator) backoff(attempt int) time.Duration {
	g.mu.Lock()
	jitter := 0.5 + g.rng.Float64()*0.5
	g.mu.Unlock()
	return time.Duration(float64(g.baseDelay) * math.Pow(2, float64(attempt)) * jitter)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", generation.ErrContentBlocked
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: response has no text", generation.ErrInvalidResponse)
	}
	return sb.String(), nil
}

// isTransient reports whether err may succeed on retry. Client errors other
// than rate limiting are permanent.
func isTransient(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return retryableStatus(apiErrPtr.Code)
	}
	return true
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
