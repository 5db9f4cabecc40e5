// internal/collab/broadcast.go
package collab

import (
	"collab-service/internal/model"
)

// publishTargetLocked returns the room to publish into, or "" when publishing
// is currently a no-op (disconnected, collaboration off, or no room held).
// Callers are not required to check state first.
func (s *Session) publishTargetLocked() string {
	if !s.connected || !s.collabEnabled || s.disposed {
		return ""
	}
	return s.primaryRoom
}

// PublishCursor broadcasts the local user's cursor position to the primary
// room. The local stores are never written here; the session's own signal
// comes back through the transport like any peer's.
func (s *Session) PublishCursor(x, y float64, page string) {
	s.mu.Lock()
	room := s.publishTargetLocked()
	if room == "" {
		s.mu.Unlock()
		return
	}
	ev := model.CursorEvent{
		Room: room,
		Signal: model.CursorSignal{
			UserID:   s.self.ID,
			Username: s.self.Name,
			X:        x,
			Y:        y,
			Page:     page,
		},
	}
	s.mu.Unlock()

	s.transport.Emit(ev)
}

// PublishEditingStatus broadcasts whether the local user is editing an entity.
func (s *Session) PublishEditingStatus(isEditing bool, entityID, entityType string) {
	s.mu.Lock()
	room := s.publishTargetLocked()
	if room == "" {
		s.mu.Unlock()
		return
	}
	ev := model.EditingEvent{
		Room: room,
		Signal: model.EditingSignal{
			UserID:     s.self.ID,
			IsEditing:  isEditing,
			EntityID:   entityID,
			EntityType: entityType,
		},
	}
	s.mu.Unlock()

	s.transport.Emit(ev)
}

// PublishActivity broadcasts an activity log entry for the local user.
func (s *Session) PublishActivity(action, entityID, entityType string) {
	s.mu.Lock()
	room := s.publishTargetLocked()
	if room == "" {
		s.mu.Unlock()
		return
	}
	ev := model.ActivityEvent{
		Room: room,
		Signal: model.ActivitySignal{
			UserID:     s.self.ID,
			Action:     action,
			EntityID:   entityID,
			EntityType: entityType,
		},
	}
	s.mu.Unlock()

	s.transport.Emit(ev)
}

// UsersEditingEntity resolves which present users are editing the given
// entity right now. Editing records whose user is missing from the roster are
// dropped rather than surfaced as partial users.
func (s *Session) UsersEditingEntity(entityID, entityType string) []model.PresenceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[string]model.PresenceRecord, len(s.presence))
	for _, u := range s.presence {
		byID[u.ID.String()] = u
	}

	users := make([]model.PresenceRecord, 0)
	for _, sig := range s.editing {
		if !sig.IsEditing || sig.EntityID != entityID || sig.EntityType != entityType {
			continue
		}
		if u, ok := byID[sig.UserID.String()]; ok {
			users = append(users, u)
		}
	}
	return users
}
