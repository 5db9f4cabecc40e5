// internal/collab/stores.go
package collab

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"collab-service/internal/model"
)

// handleEvent is the single ingestion path for all subscribed events. It runs
// to completion per event on the transport's reader goroutine.
func (s *Session) handleEvent(ev model.Event) {
	s.mu.Lock()

	// Events for rooms this session is not in are ignored even if the
	// transport delivered them.
	if ev.RoomKey() != s.primaryRoom {
		s.mu.Unlock()
		return
	}

	changed := false
	switch e := ev.(type) {
	case model.RosterEvent:
		// Rosters are full replacements, never deltas.
		s.presence = append([]model.PresenceRecord(nil), e.Users...)
		changed = true

	case model.CursorEvent:
		if s.collabEnabled {
			sig := e.Signal
			sig.ReceivedAt = s.cfg.Clock()
			s.cursors[sig.UserID] = sig
			changed = true
		}

	case model.EditingEvent:
		if s.collabEnabled {
			sig := e.Signal
			sig.ReceivedAt = s.cfg.Clock()
			s.editing[sig.UserID] = sig
			changed = true
		}

	case model.ActivityEvent:
		if s.collabEnabled {
			sig := e.Signal
			sig.ReceivedAt = s.cfg.Clock()
			s.activity[sig.UserID] = sig
			changed = true
		}

	default:
		s.logger.Warn("Unhandled event kind", zap.String("kind", string(ev.Kind())))
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// CollaborationEnabled reports whether inbound signals are being recorded.
func (s *Session) CollaborationEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collabEnabled
}

// SetCollaborationEnabled turns signal recording on or off. Disabling clears
// the cursor and editing stores immediately, regardless of timestamps.
func (s *Session) SetCollaborationEnabled(enabled bool) {
	s.mu.Lock()
	if s.collabEnabled == enabled {
		s.mu.Unlock()
		return
	}
	s.collabEnabled = enabled
	if !enabled {
		// Hard reset, not a timeout based expiry.
		s.cursors = make(map[uuid.UUID]model.CursorSignal)
		s.editing = make(map[uuid.UUID]model.EditingSignal)
	}
	s.mu.Unlock()
	s.notify()
}

// ToggleCollaboration flips signal recording and returns the new state.
func (s *Session) ToggleCollaboration() bool {
	s.mu.Lock()
	next := !s.collabEnabled
	s.mu.Unlock()
	s.SetCollaborationEnabled(next)
	return next
}

// ViewMode returns the local display filter.
func (s *Session) ViewMode() model.ViewMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewMode
}

// ChangeViewMode sets the local display filter. Unknown modes are ignored.
func (s *Session) ChangeViewMode(mode model.ViewMode) {
	if !mode.Valid() {
		return
	}
	s.mu.Lock()
	s.viewMode = mode
	s.mu.Unlock()
}

// ActiveUsers returns the last roster received for the primary room.
func (s *Session) ActiveUsers() []model.PresenceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.PresenceRecord(nil), s.presence...)
}

// Cursors returns a snapshot of the cursor store.
func (s *Session) Cursors() []model.CursorSignal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.CursorSignal, 0, len(s.cursors))
	for _, sig := range s.cursors {
		out = append(out, sig)
	}
	return out
}

// EditingStatuses returns a snapshot of the editing-status store.
func (s *Session) EditingStatuses() []model.EditingSignal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.EditingSignal, 0, len(s.editing))
	for _, sig := range s.editing {
		out = append(out, sig)
	}
	return out
}

// Activities returns a snapshot of the activity store.
func (s *Session) Activities() []model.ActivitySignal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ActivitySignal, 0, len(s.activity))
	for _, sig := range s.activity {
		out = append(out, sig)
	}
	return out
}
