package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// TestifyMockPlaylistStore is a mock of store.PlaylistStore for use with testify/mock.
type TestifyMockPlaylistStore struct {
	mock.Mock
}

var _ store.PlaylistStore = (*TestifyMockPlaylistStore)(nil)

func (m *TestifyMockPlaylistStore) Create(ctx context.Context, playlist *domain.Playlist) error {
	args := m.Called(ctx, playlist)
	return args.Error(0)
}

func (m *TestifyMockPlaylistStore) GetByID(ctx context.Context, ownerID, playlistID uuid.UUID) (*domain.Playlist, error) {
	args := m.Called(ctx, ownerID, playlistID)
	if p, ok := args.Get(0).(*domain.Playlist); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TestifyMockPlaylistStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Playlist, error) {
	args := m.Called(ctx, ownerID)
	if ps, ok := args.Get(0).([]*domain.Playlist); ok {
		return ps, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TestifyMockPlaylistStore) Delete(ctx context.Context, ownerID, playlistID uuid.UUID) error {
	args := m.Called(ctx, ownerID, playlistID)
	return args.Error(0)
}

func (m *TestifyMockPlaylistStore) AddStory(ctx context.Context, playlistID, storyID uuid.UUID) error {
	args := m.Called(ctx, playlistID, storyID)
	return args.Error(0)
}

func (m *TestifyMockPlaylistStore) RemoveStory(ctx context.Context, playlistID, storyID uuid.UUID) error {
	args := m.Called(ctx, playlistID, storyID)
	return args.Error(0)
}

// WithTx returns the receiver.
func (m *TestifyMockPlaylistStore) WithTx(tx *sql.Tx) store.PlaylistStore {
	return m
}
