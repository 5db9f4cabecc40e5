package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"collab-service/internal/model"
	"collab-service/internal/repository"
)

// PresenceService answers REST queries about room presence. The realtime path
// lives in the hub; this layer only reads the shared presence keys.
type PresenceService struct {
	repo   repository.PresenceRepository
	logger *zap.Logger
}

func NewPresenceService(repo repository.PresenceRepository, logger *zap.Logger) *PresenceService {
	return &PresenceService{repo: repo, logger: logger}
}

// RoomUsers returns the users currently present in a room.
func (s *PresenceService) RoomUsers(ctx context.Context, room string) ([]model.PresenceRecord, error) {
	if s.repo == nil {
		return []model.PresenceRecord{}, nil
	}
	return s.repo.ListRoom(ctx, room)
}

// IsUserInRoom reports whether a user is currently present in a room.
func (s *PresenceService) IsUserInRoom(ctx context.Context, room string, userID uuid.UUID) (bool, error) {
	users, err := s.RoomUsers(ctx, room)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.ID == userID {
			return true, nil
		}
	}
	return false, nil
}

// RoomStats returns the occupancy of every room with at least one member.
func (s *PresenceService) RoomStats(ctx context.Context) (map[string]int, error) {
	if s.repo == nil {
		return map[string]int{}, nil
	}
	rooms, err := s.repo.Rooms(ctx)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int, len(rooms))
	for _, room := range rooms {
		users, err := s.repo.ListRoom(ctx, room)
		if err != nil {
			s.logger.Warn("Failed to list room presence",
				zap.String("room", room), zap.Error(err))
			continue
		}
		stats[room] = len(users)
	}
	return stats, nil
}
