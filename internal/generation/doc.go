// Package generation defines the boundary between the application and the
// language model that drafts mnemonic stories and quizzes. The service layer
// depends only on the Generator interface; the Gemini adapter in
// internal/platform/gemini provides the production implementation.
package generation
