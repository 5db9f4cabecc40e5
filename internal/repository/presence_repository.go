package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"collab-service/internal/database"
	"collab-service/internal/model"
)

// PresenceRepository tracks which users are present in which room. Entries
// carry a TTL so members of a crashed hub instance age out without a clean
// leave.
type PresenceRepository interface {
	Track(ctx context.Context, room string, user model.PresenceRecord) error
	Refresh(ctx context.Context, room string, userID uuid.UUID) error
	Untrack(ctx context.Context, room string, userID uuid.UUID) error
	ListRoom(ctx context.Context, room string) ([]model.PresenceRecord, error)
	Rooms(ctx context.Context) ([]string, error)
}

type redisPresenceRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewPresenceRepository creates a redis-backed presence repository.
func NewPresenceRepository(rdb *redis.Client, ttl time.Duration) PresenceRepository {
	return &redisPresenceRepository{rdb: rdb, ttl: ttl}
}

func (r *redisPresenceRepository) Track(ctx context.Context, room string, user model.PresenceRecord) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal presence record: %w", err)
	}
	return r.rdb.Set(ctx, database.PresenceKey(room, user.ID.String()), data, r.ttl).Err()
}

func (r *redisPresenceRepository) Refresh(ctx context.Context, room string, userID uuid.UUID) error {
	return r.rdb.Expire(ctx, database.PresenceKey(room, userID.String()), r.ttl).Err()
}

func (r *redisPresenceRepository) Untrack(ctx context.Context, room string, userID uuid.UUID) error {
	return r.rdb.Del(ctx, database.PresenceKey(room, userID.String())).Err()
}

func (r *redisPresenceRepository) ListRoom(ctx context.Context, room string) ([]model.PresenceRecord, error) {
	keys, err := r.rdb.Keys(ctx, database.PresenceKeyPattern(room)).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []model.PresenceRecord{}, nil
	}

	values, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	users := make([]model.PresenceRecord, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var user model.PresenceRecord
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *redisPresenceRepository) Rooms(ctx context.Context) ([]string, error) {
	keys, err := r.rdb.Keys(ctx, "collab:presence:*").Result()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	rooms := make([]string, 0)
	for _, key := range keys {
		rest := strings.TrimPrefix(key, "collab:presence:")
		// The room key itself may contain colons; the user id never does.
		idx := strings.LastIndex(rest, ":")
		if idx <= 0 {
			continue
		}
		room := rest[:idx]
		if !seen[room] {
			seen[room] = true
			rooms = append(rooms, room)
		}
	}
	return rooms, nil
}
