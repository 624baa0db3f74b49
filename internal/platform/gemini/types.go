package gemini

import (
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/generation"
)

type mnemonicPromptData struct {
	LanguageInstruction string
	Text                string
}

type quizPromptData struct {
	LanguageInstruction string
	Topic               string
	Facts               string
	Associations        []domain.Association
}

// mnemonicSchema is the JSON object the model returns for a mnemonic request.
type mnemonicSchema struct {
	Topic        string              `json:"topic"`
	Facts        []string            `json:"facts"`
	Story        string              `json:"story"`
	Associations []associationSchema `json:"associations"`
	VisualPrompt string              `json:"visualPrompt"`
}

type associationSchema struct {
	Term        string `json:"term"`
	Character   string `json:"character"`
	Explanation string `json:"explanation"`
}

// quizSchema is the JSON object the model returns for a quiz request.
type quizSchema struct {
	Questions []generation.QuizQuestion `json:"questions"`
}
