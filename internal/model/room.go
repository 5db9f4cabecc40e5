// internal/model/room.go
package model

import (
	"strings"

	"github.com/google/uuid"
)

// Room keys are opaque strings of the form "<kind>:<id>". A session holds at
// most one primary (project) room and any number of entity rooms.
const primaryRoomPrefix = "project:"

// ProjectRoom returns the primary room key for a project.
func ProjectRoom(projectID uuid.UUID) string {
	return primaryRoomPrefix + projectID.String()
}

// EntityRoom returns the room key for a co-edited entity, e.g. "document:7".
func EntityRoom(entityType, entityID string) string {
	return entityType + ":" + entityID
}

// IsPrimaryRoom reports whether key names a project room.
func IsPrimaryRoom(key string) bool {
	return strings.HasPrefix(key, primaryRoomPrefix)
}
