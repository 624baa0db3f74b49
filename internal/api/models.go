package api

import (
	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/generation"
	"github.com/phrazzld/mnemo-api/internal/service"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned by the login and guest endpoints.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// StoryRequest is the body of story create and update requests.
// ID is optional; when present on update it must match the path.
type StoryRequest struct {
	ID             *uuid.UUID           `json:"id,omitempty"`
	Topic          string               `json:"topic"          validate:"required"`
	Facts          []string             `json:"facts"`
	Narrative      string               `json:"narrative"`
	Associations   []domain.Association `json:"associations"`
	VisualPrompt   string               `json:"visualPrompt"`
	GeneratedImage *string              `json:"generatedImage,omitempty"`
}

func (r StoryRequest) input() service.StoryInput {
	return service.StoryInput{
		Topic:          r.Topic,
		Facts:          r.Facts,
		Narrative:      r.Narrative,
		Associations:   r.Associations,
		VisualPrompt:   r.VisualPrompt,
		GeneratedImage: r.GeneratedImage,
	}
}

// ReviewRequest is the body of POST /stories/{id}/review. Both fields are
// pointers so that a missing field is distinguishable from zero. Range checks
// happen in the review service.
type ReviewRequest struct {
	AssociationIndex *int `json:"associationIndex" validate:"required"`
	Quality          *int `json:"quality"          validate:"required"`
}

// PlaylistRequest is the body of POST /playlists.
type PlaylistRequest struct {
	Name        string `json:"name"        validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// MnemonicRequest is the body of POST /ai/mnemonic.
type MnemonicRequest struct {
	Text     string `json:"text"     validate:"required"`
	Language string `json:"language" validate:"omitempty,oneof=en es"`
}

// QuizRequest is the body of POST /ai/quiz.
type QuizRequest struct {
	StoryID  uuid.UUID `json:"storyId"  validate:"required"`
	Language string    `json:"language" validate:"omitempty,oneof=en es"`
}

// QuizResponse wraps the generated questions.
type QuizResponse struct {
	Questions []generation.QuizQuestion `json:"questions"`
}
