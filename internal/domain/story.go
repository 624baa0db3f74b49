package domain

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Story validation errors
var (
	// ErrStoryIDEmpty is returned when a story ID is nil.
	ErrStoryIDEmpty = errors.New("story ID cannot be empty")

	// ErrStoryOwnerEmpty is returned when a story has no owner.
	ErrStoryOwnerEmpty = errors.New("story owner ID cannot be empty")
)

// Shape is the outline drawn around a character in the story illustration.
type Shape string

// Supported shapes.
const (
	ShapeRect    Shape = "rect"
	ShapeEllipse Shape = "ellipse"
)

// Valid reports whether s is a known shape.
func (s Shape) Valid() bool {
	return s == ShapeRect || s == ShapeEllipse
}

// BoundingBox locates a character inside the generated illustration as four
// coordinates, in the order produced by the image analysis step.
type BoundingBox [4]float64

// Valid reports whether every coordinate is a finite number.
func (b BoundingBox) Valid() bool {
	for _, v := range b {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Association pairs a term from the studied material with the story character
// that stands for it. It is the unit of spaced repetition scheduling.
type Association struct {
	Term        string       `json:"term"`
	Character   string       `json:"character"`
	Explanation string       `json:"explanation"`
	BoundingBox *BoundingBox `json:"boundingBox,omitempty"`
	Shape       *Shape       `json:"shape,omitempty"`
	Memory      *MemoryState `json:"memory,omitempty"`
}

// Clone returns a deep copy of a.
func (a Association) Clone() Association {
	c := a
	if a.BoundingBox != nil {
		box := *a.BoundingBox
		c.BoundingBox = &box
	}
	if a.Shape != nil {
		shape := *a.Shape
		c.Shape = &shape
	}
	c.Memory = a.Memory.Clone()
	return c
}

// Story is a user-authored mnemonic story. It exclusively owns its ordered
// associations; an association has no identity other than its position.
type Story struct {
	ID             uuid.UUID     `json:"id"`
	OwnerID        uuid.UUID     `json:"ownerId"`
	Topic          string        `json:"topic"`
	Facts          []string      `json:"facts"`
	Narrative      string        `json:"narrative"`
	Associations   []Association `json:"associations"`
	VisualPrompt   string        `json:"visualPrompt"`
	GeneratedImage *string       `json:"generatedImage,omitempty"`
	CreatedAt      int64         `json:"createdAt"`
	UpdatedAt      int64         `json:"updatedAt"`
}

// NewStory creates a story owned by ownerID with a fresh ID and timestamps.
// Returns an error if validation fails.
func NewStory(ownerID uuid.UUID, topic string, facts []string, narrative string,
	associations []Association, visualPrompt string,
) (*Story, error) {
	now := time.Now().UTC().UnixMilli()
	if facts == nil {
		facts = []string{}
	}
	if associations == nil {
		associations = []Association{}
	}

	story := &Story{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Topic:        topic,
		Facts:        facts,
		Narrative:    narrative,
		Associations: associations,
		VisualPrompt: visualPrompt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := story.Validate(); err != nil {
		return nil, err
	}

	return story, nil
}

// Validate checks if the Story has valid data.
func (s *Story) Validate() error {
	if s.ID == uuid.Nil {
		return ErrStoryIDEmpty
	}

	if s.OwnerID == uuid.Nil {
		return ErrStoryOwnerEmpty
	}

	if s.Topic == "" {
		return NewValidationError("topic", "cannot be empty")
	}

	for i, a := range s.Associations {
		field := "associations[" + strconv.Itoa(i) + "]"
		if a.Term == "" {
			return NewValidationError(field+".term", "cannot be empty")
		}
		if a.Shape != nil && !a.Shape.Valid() {
			return NewValidationError(field+".shape", "must be rect or ellipse")
		}
		if a.BoundingBox != nil && !a.BoundingBox.Valid() {
			return NewValidationError(field+".boundingBox", "must contain finite coordinates")
		}
		if a.Memory != nil {
			if err := a.Memory.Validate(); err != nil {
				var vErr *ValidationError
				if errors.As(err, &vErr) {
					return NewValidationError(field+"."+vErr.Field, vErr.Reason)
				}
				return err
			}
		}
	}

	return nil
}

// Clone returns a deep copy of the story so that callers can modify the copy
// without affecting values shared with other readers.
func (s *Story) Clone() *Story {
	c := *s
	if s.Facts != nil {
		c.Facts = make([]string, len(s.Facts))
		copy(c.Facts, s.Facts)
	}
	if s.Associations != nil {
		c.Associations = make([]Association, len(s.Associations))
		for i, a := range s.Associations {
			c.Associations[i] = a.Clone()
		}
	}
	if s.GeneratedImage != nil {
		img := *s.GeneratedImage
		c.GeneratedImage = &img
	}
	return &c
}

// DueAssociations returns, in order, the positions of associations that are
// due for review at nowMs.
func (s *Story) DueAssociations(nowMs int64) []int {
	var due []int
	for i := range s.Associations {
		if s.Associations[i].Memory.IsDue(nowMs) {
			due = append(due, i)
		}
	}
	return due
}
