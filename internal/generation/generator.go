package generation

import (
	"context"
	"math/rand"
	"strconv"
	"strings"

	"github.com/phrazzld/mnemo-api/internal/domain"
)

// Language selects the output language of generated content.
type Language string

// Supported languages.
const (
	LanguageEnglish Language = "en"
	LanguageSpanish Language = "es"
)

// ParseLanguage converts a request value to a Language. An empty value means English.
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case "", LanguageEnglish:
		return LanguageEnglish, nil
	case LanguageSpanish:
		return LanguageSpanish, nil
	default:
		return "", domain.NewValidationError("language", "must be en or es")
	}
}

// MnemonicDraft is a generated, unsaved story. Its associations carry no
// memory state.
type MnemonicDraft struct {
	Topic        string               `json:"topic"`
	Facts        []string             `json:"facts"`
	Story        string               `json:"story"`
	Associations []domain.Association `json:"associations"`
	VisualPrompt string               `json:"visualPrompt"`
}

// QuizQuestion is a multiple choice question about one association of a story.
type QuizQuestion struct {
	AssociationIndex   int      `json:"associationIndex"`
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correctOptionIndex"`
	Explanation        string   `json:"explanation"`
}

// Validate checks q against the story it was generated for.
func (q QuizQuestion) Validate(associationCount int) error {
	if q.AssociationIndex < 0 || q.AssociationIndex >= associationCount {
		return &domain.OutOfRangeError{Index: q.AssociationIndex, Length: associationCount}
	}
	if strings.TrimSpace(q.Question) == "" {
		return domain.NewValidationError("question", "cannot be empty")
	}
	if len(q.Options) < 2 {
		return domain.NewValidationError("options", "must contain at least 2 entries, got "+strconv.Itoa(len(q.Options)))
	}
	if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
		return domain.NewValidationError("correctOptionIndex", "must address one of the options")
	}
	return nil
}

// ShuffleOptions reorders the options of q in place and moves
// CorrectOptionIndex with the correct answer.
func ShuffleOptions(q *QuizQuestion, rng *rand.Rand) {
	if len(q.Options) < 2 || q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
		return
	}
	correct := q.CorrectOptionIndex
	rng.Shuffle(len(q.Options), func(i, j int) {
		q.Options[i], q.Options[j] = q.Options[j], q.Options[i]
		switch correct {
		case i:
			correct = j
		case j:
			correct = i
		}
	})
	q.CorrectOptionIndex = correct
}

// Generator drafts mnemonic content with a language model.
type Generator interface {
	// GenerateMnemonic turns study material into a story draft.
	GenerateMnemonic(ctx context.Context, text string, lang Language) (*MnemonicDraft, error)

	// GenerateQuiz writes one question per association of story. Questions
	// address associations by their index in story.Associations.
	GenerateQuiz(ctx context.Context, story *domain.Story, lang Language) ([]QuizQuestion, error)
}
