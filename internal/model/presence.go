// internal/model/presence.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// PresenceRecord identifies a user currently active in a room. The identity
// fields come from the user service; the collaboration layer never invents
// them.
type PresenceRecord struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Avatar string    `json:"avatar,omitempty"`
}

// CursorSignal is the last reported cursor position for a user. Latest write
// wins; there is no merging.
type CursorSignal struct {
	UserID     uuid.UUID `json:"userId"`
	Username   string    `json:"username"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Page       string    `json:"page,omitempty"`
	ReceivedAt time.Time `json:"receivedAt,omitempty"`
}

// EditingSignal marks whether a user is currently editing an entity. It is a
// signal only, not a lock: nothing prevents concurrent editors.
type EditingSignal struct {
	UserID     uuid.UUID `json:"userId"`
	IsEditing  bool      `json:"isEditing"`
	EntityID   string    `json:"entityId,omitempty"`
	EntityType string    `json:"entityType,omitempty"`
	ReceivedAt time.Time `json:"receivedAt,omitempty"`
}

// ActivitySignal is the most recent activity log entry for a user. Previous
// entries are overwritten.
type ActivitySignal struct {
	UserID     uuid.UUID `json:"userId"`
	Action     string    `json:"action"`
	EntityID   string    `json:"entityId,omitempty"`
	EntityType string    `json:"entityType,omitempty"`
	ReceivedAt time.Time `json:"receivedAt,omitempty"`
}

// ViewMode is a local display filter. It is never synchronized across users.
type ViewMode string

const (
	ViewEveryone      ViewMode = "everyone"
	ViewCollaborators ViewMode = "collaborators"
	ViewJustMe        ViewMode = "just-me"
)

// Valid reports whether m is one of the known view modes.
func (m ViewMode) Valid() bool {
	switch m {
	case ViewEveryone, ViewCollaborators, ViewJustMe:
		return true
	}
	return false
}
