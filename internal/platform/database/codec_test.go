package database

import (
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoryColumnsPreserveOrderAndMemory(t *testing.T) {
	t.Parallel()

	memory := &domain.MemoryState{
		Repetitions:    2,
		Ease:           2.36,
		IntervalDays:   6,
		LastReviewedAt: 1_700_000_000_000,
		NextDueAt:      1_700_000_000_000 + 6*domain.MillisPerDay,
	}
	in := &domain.Story{
		ID:    uuid.New(),
		Facts: []string{"b", "a"},
		Associations: []domain.Association{
			{Term: "zeta"},
			{Term: "alpha", Memory: memory},
		},
	}

	cols, err := EncodeStoryColumns(in)
	require.NoError(t, err)

	out := &domain.Story{ID: in.ID}
	require.NoError(t, cols.DecodeInto(out))

	assert.Equal(t, in.Facts, out.Facts)
	require.Len(t, out.Associations, 2)
	assert.Equal(t, "zeta", out.Associations[0].Term)
	assert.Equal(t, memory, out.Associations[1].Memory)
}

func TestStoryColumnsNilLists(t *testing.T) {
	t.Parallel()

	cols, err := EncodeStoryColumns(&domain.Story{})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(cols.Facts))
	assert.JSONEq(t, `[]`, string(cols.Associations))

	out := &domain.Story{}
	require.NoError(t, StoryColumns{}.DecodeInto(out))
	assert.NotNil(t, out.Facts)
	assert.NotNil(t, out.Associations)

	assert.Error(t, StoryColumns{Associations: []byte("{")}.DecodeInto(out))
}
