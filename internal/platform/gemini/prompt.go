package gemini

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/generation"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

const spanishInstruction = `IMPORTANT: OUTPUT MUST BE IN SPANISH (ESPAÑOL).
- JSON keys MUST remain in English.
- ALL values, story content, explanations and terms MUST be in Spanish.
- Characters should have names that make sense as Spanish puns.`

func languageInstruction(lang generation.Language) string {
	if lang == generation.LanguageSpanish {
		return spanishInstruction
	}
	return "Provide all output in English."
}

func renderMnemonicPrompt(text string, lang generation.Language) (string, error) {
	return render("mnemonic.tmpl", mnemonicPromptData{
		LanguageInstruction: languageInstruction(lang),
		Text:                text,
	})
}

func renderQuizPrompt(story *domain.Story, lang generation.Language) (string, error) {
	return render("quiz.tmpl", quizPromptData{
		LanguageInstruction: languageInstruction(lang),
		Topic:               story.Topic,
		Facts:               strings.Join(story.Facts, "; "),
		Associations:        story.Associations,
	})
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template %s: %w", name, err)
	}
	return buf.String(), nil
}
