package database

import (
	"encoding/json"
	"fmt"

	"github.com/phrazzld/mnemo-api/internal/domain"
)

// StoryColumns holds the JSON-encoded list columns of a stories row.
type StoryColumns struct {
	Facts        []byte
	Associations []byte
}

// EncodeStoryColumns marshals the ordered lists of s for storage. Nil lists
// are stored as empty arrays.
func EncodeStoryColumns(s *domain.Story) (StoryColumns, error) {
	facts := s.Facts
	if facts == nil {
		facts = []string{}
	}
	associations := s.Associations
	if associations == nil {
		associations = []domain.Association{}
	}

	f, err := json.Marshal(facts)
	if err != nil {
		return StoryColumns{}, fmt.Errorf("failed to encode facts: %w", err)
	}
	a, err := json.Marshal(associations)
	if err != nil {
		return StoryColumns{}, fmt.Errorf("failed to encode associations: %w", err)
	}
	return StoryColumns{Facts: f, Associations: a}, nil
}

// DecodeInto unmarshals the columns into s.
func (c StoryColumns) DecodeInto(s *domain.Story) error {
	s.Facts = []string{}
	s.Associations = []domain.Association{}
	if len(c.Facts) > 0 {
		if err := json.Unmarshal(c.Facts, &s.Facts); err != nil {
			return fmt.Errorf("failed to decode facts of story %s: %w", s.ID, err)
		}
	}
	if len(c.Associations) > 0 {
		if err := json.Unmarshal(c.Associations, &s.Associations); err != nil {
			return fmt.Errorf("failed to decode associations of story %s: %w", s.ID, err)
		}
	}
	return nil
}
