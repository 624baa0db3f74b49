package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// TestifyMockStoryStore is a mock of store.StoryStore for use with testify/mock.
type TestifyMockStoryStore struct {
	mock.Mock
}

var _ store.StoryStore = (*TestifyMockStoryStore)(nil)

func (m *TestifyMockStoryStore) Create(ctx context.Context, story *domain.Story) error {
	args := m.Called(ctx, story)
	return args.Error(0)
}

func (m *TestifyMockStoryStore) GetByID(ctx context.Context, ownerID, storyID uuid.UUID) (*domain.Story, error) {
	args := m.Called(ctx, ownerID, storyID)
	if story, ok := args.Get(0).(*domain.Story); ok {
		return story, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TestifyMockStoryStore) GetForUpdate(ctx context.Context, ownerID, storyID uuid.UUID) (*domain.Story, error) {
	args := m.Called(ctx, ownerID, storyID)
	if story, ok := args.Get(0).(*domain.Story); ok {
		return story, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TestifyMockStoryStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Story, error) {
	args := m.Called(ctx, ownerID)
	if stories, ok := args.Get(0).([]*domain.Story); ok {
		return stories, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TestifyMockStoryStore) Update(ctx context.Context, story *domain.Story) error {
	args := m.Called(ctx, story)
	return args.Error(0)
}

func (m *TestifyMockStoryStore) Delete(ctx context.Context, ownerID, storyID uuid.UUID) error {
	args := m.Called(ctx, ownerID, storyID)
	return args.Error(0)
}

// WithTx returns the receiver.
func (m *TestifyMockStoryStore) WithTx(tx *sql.Tx) store.StoryStore {
	return m
}
