package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/generation"
)

// MockGenerator implements generation.Generator for testing.
type MockGenerator struct {
	GenerateMnemonicFn func(ctx context.Context, text string, lang generation.Language) (*generation.MnemonicDraft, error)
	GenerateQuizFn     func(ctx context.Context, story *domain.Story, lang generation.Language) ([]generation.QuizQuestion, error)

	// Default response values
	Draft     *generation.MnemonicDraft
	Questions []generation.QuizQuestion
	Err       error

	mu        sync.Mutex
	Texts     []string
	Languages []generation.Language
}

var _ generation.Generator = (*MockGenerator)(nil)

// GenerateMnemonic implements generation.Generator.
func (m *MockGenerator) GenerateMnemonic(
	ctx context.Context,
	text string,
	lang generation.Language,
) (*generation.MnemonicDraft, error) {
	m.record(text, lang)
	if m.GenerateMnemonicFn != nil {
		return m.GenerateMnemonicFn(ctx, text, lang)
	}
	return m.Draft, m.Err
}

// GenerateQuiz implements generation.Generator.
func (m *MockGenerator) GenerateQuiz(
	ctx context.Context,
	story *domain.Story,
	lang generation.Language,
) ([]generation.QuizQuestion, error) {
	m.record(story.Topic, lang)
	if m.GenerateQuizFn != nil {
		return m.GenerateQuizFn(ctx, story, lang)
	}
	return m.Questions, m.Err
}

func (m *MockGenerator) record(text string, lang generation.Language) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Texts = append(m.Texts, text)
	m.Languages = append(m.Languages, lang)
}
