package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"collab-service/internal/model"
)

// MockPresenceRepository is a func-field mock of repository.PresenceRepository
type MockPresenceRepository struct {
	TrackFunc    func(ctx context.Context, room string, user model.PresenceRecord) error
	RefreshFunc  func(ctx context.Context, room string, userID uuid.UUID) error
	UntrackFunc  func(ctx context.Context, room string, userID uuid.UUID) error
	ListRoomFunc func(ctx context.Context, room string) ([]model.PresenceRecord, error)
	RoomsFunc    func(ctx context.Context) ([]string, error)
}

func (m *MockPresenceRepository) Track(ctx context.Context, room string, user model.PresenceRecord) error {
	if m.TrackFunc != nil {
		return m.TrackFunc(ctx, room, user)
	}
	return nil
}

func (m *MockPresenceRepository) Refresh(ctx context.Context, room string, userID uuid.UUID) error {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, room, userID)
	}
	return nil
}

func (m *MockPresenceRepository) Untrack(ctx context.Context, room string, userID uuid.UUID) error {
	if m.UntrackFunc != nil {
		return m.UntrackFunc(ctx, room, userID)
	}
	return nil
}

func (m *MockPresenceRepository) ListRoom(ctx context.Context, room string) ([]model.PresenceRecord, error) {
	if m.ListRoomFunc != nil {
		return m.ListRoomFunc(ctx, room)
	}
	return []model.PresenceRecord{}, nil
}

func (m *MockPresenceRepository) Rooms(ctx context.Context) ([]string, error) {
	if m.RoomsFunc != nil {
		return m.RoomsFunc(ctx)
	}
	return nil, nil
}

func TestPresenceService_RoomUsers(t *testing.T) {
	alice := model.PresenceRecord{ID: uuid.New(), Name: "Alice"}
	bob := model.PresenceRecord{ID: uuid.New(), Name: "Bob"}
	mockRepo := &MockPresenceRepository{
		ListRoomFunc: func(ctx context.Context, room string) ([]model.PresenceRecord, error) {
			assert.Equal(t, "project:p1", room)
			return []model.PresenceRecord{alice, bob}, nil
		},
	}
	svc := NewPresenceService(mockRepo, zap.NewNop())

	users, err := svc.RoomUsers(context.Background(), "project:p1")

	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestPresenceService_RoomUsers_WithoutRepository(t *testing.T) {
	svc := NewPresenceService(nil, zap.NewNop())

	users, err := svc.RoomUsers(context.Background(), "project:p1")

	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestPresenceService_IsUserInRoom(t *testing.T) {
	alice := model.PresenceRecord{ID: uuid.New(), Name: "Alice"}
	mockRepo := &MockPresenceRepository{
		ListRoomFunc: func(ctx context.Context, room string) ([]model.PresenceRecord, error) {
			return []model.PresenceRecord{alice}, nil
		},
	}
	svc := NewPresenceService(mockRepo, zap.NewNop())

	present, err := svc.IsUserInRoom(context.Background(), "project:p1", alice.ID)
	require.NoError(t, err)
	assert.True(t, present)

	absent, err := svc.IsUserInRoom(context.Background(), "project:p1", uuid.New())
	require.NoError(t, err)
	assert.False(t, absent)
}

func TestPresenceService_IsUserInRoom_RepositoryError(t *testing.T) {
	mockRepo := &MockPresenceRepository{
		ListRoomFunc: func(ctx context.Context, room string) ([]model.PresenceRecord, error) {
			return nil, errors.New("redis down")
		},
	}
	svc := NewPresenceService(mockRepo, zap.NewNop())

	_, err := svc.IsUserInRoom(context.Background(), "project:p1", uuid.New())

	assert.Error(t, err)
}

func TestPresenceService_RoomStats(t *testing.T) {
	occupancy := map[string][]model.PresenceRecord{
		"project:p1": {{ID: uuid.New()}, {ID: uuid.New()}},
		"project:p2": {{ID: uuid.New()}},
	}
	mockRepo := &MockPresenceRepository{
		RoomsFunc: func(ctx context.Context) ([]string, error) {
			return []string{"project:p1", "project:p2", "project:p3"}, nil
		},
		ListRoomFunc: func(ctx context.Context, room string) ([]model.PresenceRecord, error) {
			if room == "project:p3" {
				return nil, errors.New("key vanished")
			}
			return occupancy[room], nil
		},
	}
	svc := NewPresenceService(mockRepo, zap.NewNop())

	stats, err := svc.RoomStats(context.Background())

	require.NoError(t, err)
	// The failing room is skipped, not fatal
	assert.Equal(t, map[string]int{"project:p1": 2, "project:p2": 1}, stats)
}

func TestPresenceService_RoomStats_WithoutRepository(t *testing.T) {
	svc := NewPresenceService(nil, zap.NewNop())

	stats, err := svc.RoomStats(context.Background())

	require.NoError(t, err)
	assert.Empty(t, stats)
}
