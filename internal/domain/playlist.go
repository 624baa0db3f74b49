package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrPlaylistNameEmpty is returned when a playlist has no name.
var ErrPlaylistNameEmpty = errors.New("playlist name cannot be empty")

// Playlist groups stories for study. It references stories without owning
// them: deleting a playlist never deletes a story.
type Playlist struct {
	ID          uuid.UUID   `json:"id"`
	OwnerID     uuid.UUID   `json:"ownerId"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	StoryIDs    []uuid.UUID `json:"storyIds"`
	CreatedAt   int64       `json:"createdAt"`
}

// NewPlaylist creates an empty playlist owned by ownerID.
func NewPlaylist(ownerID uuid.UUID, name, description string) (*Playlist, error) {
	p := &Playlist{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		StoryIDs:    []uuid.UUID{},
		CreatedAt:   time.Now().UTC().UnixMilli(),
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks if the Playlist has valid data.
func (p *Playlist) Validate() error {
	if p.ID == uuid.Nil {
		return errors.New("playlist ID cannot be empty")
	}
	if p.OwnerID == uuid.Nil {
		return ErrEmptyUserID
	}
	if p.Name == "" {
		return ErrPlaylistNameEmpty
	}
	return nil
}
