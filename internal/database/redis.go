// internal/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects to redis. The hub degrades to single-instance fanout when
// the returned error is non-nil and the caller proceeds with a nil client.
func NewRedis(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// RoomChannel is the pub/sub channel carrying a room's event fanout across
// hub instances.
func RoomChannel(room string) string {
	return "collab:room:" + room
}

// PresenceKey stores one user's presence record for a room, with a TTL so a
// crashed instance's entries age out on their own.
func PresenceKey(room, userID string) string {
	return fmt.Sprintf("collab:presence:%s:%s", room, userID)
}

// PresenceKeyPattern matches every presence key for a room.
func PresenceKeyPattern(room string) string {
	return fmt.Sprintf("collab:presence:%s:*", room)
}
