package job

import (
	"context"
	"time"

	"go.uber.org/zap"

	"collab-service/internal/metrics"
	"collab-service/internal/repository"
)

// PresenceJanitor keeps the presence gauges fresh. Individual presence keys
// expire on their own TTL; the janitor's job is reporting, not eviction.
type PresenceJanitor struct {
	presenceRepo repository.PresenceRepository
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewPresenceJanitor creates a new PresenceJanitor instance
func NewPresenceJanitor(
	presenceRepo repository.PresenceRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) *PresenceJanitor {
	return &PresenceJanitor{
		presenceRepo: presenceRepo,
		metrics:      m,
		logger:       logger,
	}
}

// Run executes one janitor pass.
func (j *PresenceJanitor) Run() {
	if j.presenceRepo == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rooms, err := j.presenceRepo.Rooms(ctx)
	if err != nil {
		j.logger.Error("Failed to list rooms with presence", zap.Error(err))
		return
	}

	totalUsers := 0
	for _, room := range rooms {
		users, err := j.presenceRepo.ListRoom(ctx, room)
		if err != nil {
			j.logger.Warn("Failed to list room presence",
				zap.String("room", room), zap.Error(err))
			continue
		}
		totalUsers += len(users)
	}

	j.metrics.SetRoomsActive(len(rooms))
	j.metrics.SetPresenceUsersActive(totalUsers)

	j.logger.Debug("Presence janitor pass completed",
		zap.Int("rooms", len(rooms)),
		zap.Int("users", totalUsers))
}
