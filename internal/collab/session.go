// internal/collab/session.go
package collab

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"collab-service/internal/model"
	"collab-service/internal/transport"
)

// Config controls the staleness sweep. Timeouts are injectable so tests can
// run the sweep against a virtual clock.
type Config struct {
	SweepInterval time.Duration
	CursorTTL     time.Duration
	EditingTTL    time.Duration
	// ActivityTTL of zero keeps activity entries for the whole session.
	ActivityTTL time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// DefaultConfig returns the production sweep settings.
func DefaultConfig() Config {
	return Config{
		SweepInterval: 10 * time.Second,
		CursorTTL:     30 * time.Second,
		EditingTTL:    60 * time.Second,
	}
}

// Session is one user's collaboration context: a connection to the hub, a
// single primary project room plus any number of entity rooms, the presence
// roster, and the ephemeral signal stores. A Session owns its own listener
// registrations and sweep timer; independent sessions never share state.
type Session struct {
	transport transport.Transport
	self      model.PresenceRecord
	cfg       Config
	logger    *zap.Logger

	mu            sync.Mutex
	connected     bool
	collabEnabled bool
	viewMode      model.ViewMode
	primaryRoom   string
	offs          []func()
	entityRooms   map[string]int

	presence []model.PresenceRecord
	cursors  map[uuid.UUID]model.CursorSignal
	editing  map[uuid.UUID]model.EditingSignal
	activity map[uuid.UUID]model.ActivitySignal

	sweepStop chan struct{}
	onUpdate  func()
	disposed  bool
}

// NewSession creates a session for the given local identity. The transport is
// not connected until Start.
func NewSession(t transport.Transport, self model.PresenceRecord, cfg Config, logger *zap.Logger) *Session {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultConfig().SweepInterval
	}
	if cfg.CursorTTL <= 0 {
		cfg.CursorTTL = DefaultConfig().CursorTTL
	}
	if cfg.EditingTTL <= 0 {
		cfg.EditingTTL = DefaultConfig().EditingTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &Session{
		transport:     t,
		self:          self,
		cfg:           cfg,
		logger:        logger,
		collabEnabled: true,
		viewMode:      model.ViewEveryone,
		entityRooms:   make(map[string]int),
		cursors:       make(map[uuid.UUID]model.CursorSignal),
		editing:       make(map[uuid.UUID]model.EditingSignal),
		activity:      make(map[uuid.UUID]model.ActivitySignal),
	}
}

// SetOnUpdate registers a callback fired whenever the stores change. The
// sweep only fires it when something was actually pruned.
func (s *Session) SetOnUpdate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = fn
}

// Start establishes the transport connection and begins the staleness sweep.
// A failed connection is reported once; the session stays disconnected and
// every publish or join call remains a no-op.
func (s *Session) Start(ctx context.Context, credential string) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return fmt.Errorf("session disposed")
	}
	if s.connected {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := s.transport.Connect(ctx, credential); err != nil {
		s.logger.Error("Failed to establish collaboration connection", zap.Error(err))
		return fmt.Errorf("failed to connect: %w", err)
	}

	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()

	s.startSweeper()
	s.logger.Info("Collaboration session connected",
		zap.String("userId", s.self.ID.String()))
	return nil
}

// Stop tears down the transport connection. Rooms are left first so peers
// see the departure.
func (s *Session) Stop() {
	s.stopSweeper()

	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return
	}
	s.leavePrimaryLocked()
	for room, n := range s.entityRooms {
		if n > 0 {
			s.transport.Emit(model.LeaveEvent{Room: room, UserID: s.self.ID})
			s.transport.LeaveRoom(room)
		}
	}
	s.entityRooms = make(map[string]int)
	s.connected = false
	s.presence = nil
	s.cursors = make(map[uuid.UUID]model.CursorSignal)
	s.editing = make(map[uuid.UUID]model.EditingSignal)
	s.activity = make(map[uuid.UUID]model.ActivitySignal)
	s.mu.Unlock()

	s.transport.Disconnect()
	s.logger.Info("Collaboration session disconnected",
		zap.String("userId", s.self.ID.String()))
}

// Dispose permanently tears the session down: the sweep timer is cancelled
// before any room is left, so it can never fire against released listeners.
func (s *Session) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.mu.Unlock()

	s.Stop()
}

// Connected reports whether the transport connection is established.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// PrimaryRoom returns the currently held primary room key, or "".
func (s *Session) PrimaryRoom() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.primaryRoom
}

// JoinPrimary moves the session into a project room. If a different primary
// room is held it is left first: the leave broadcast goes out, then its
// listeners are removed, then the new room is joined and a fresh listener set
// registered. Joining the room already held is a no-op.
func (s *Session) JoinPrimary(roomKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected || s.disposed || roomKey == "" {
		return
	}
	if s.primaryRoom == roomKey {
		return
	}

	s.leavePrimaryLocked()

	s.transport.JoinRoom(roomKey)
	s.offs = []func(){
		s.transport.On(model.EventActiveUsers, s.handleEvent),
		s.transport.On(model.EventCursorUpdate, s.handleEvent),
		s.transport.On(model.EventEditingStatus, s.handleEvent),
		s.transport.On(model.EventActivityUpdate, s.handleEvent),
	}
	s.primaryRoom = roomKey
	s.transport.Emit(model.JoinEvent{Room: roomKey, User: s.self})

	s.logger.Debug("Joined primary room", zap.String("room", roomKey))
}

// LeavePrimary leaves the current primary room, if any.
func (s *Session) LeavePrimary() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return
	}
	s.leavePrimaryLocked()
}

// leavePrimaryLocked emits the leave broadcast before unsubscribing, so the
// hub still has a registered connection to deliver it from.
func (s *Session) leavePrimaryLocked() {
	room := s.primaryRoom
	if room == "" {
		return
	}

	s.transport.Emit(model.LeaveEvent{Room: room, UserID: s.self.ID})
	for _, off := range s.offs {
		off()
	}
	s.offs = nil
	s.transport.LeaveRoom(room)
	s.primaryRoom = ""
	s.presence = nil

	s.logger.Debug("Left primary room", zap.String("room", room))
}

// JoinEntityRoom joins an additional room for a co-edited entity, independent
// of the primary room, and returns a disposer that leaves it. The disposer is
// idempotent.
func (s *Session) JoinEntityRoom(entityType, entityID string) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected || s.disposed {
		return func() {}
	}

	room := model.EntityRoom(entityType, entityID)
	s.entityRooms[room]++
	if s.entityRooms[room] == 1 {
		s.transport.JoinRoom(room)
		s.transport.Emit(model.JoinEvent{Room: room, User: s.self})
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.leaveEntityRoomLocked(room)
		})
	}
}

func (s *Session) leaveEntityRoomLocked(room string) {
	n, ok := s.entityRooms[room]
	if !ok || n == 0 {
		return
	}
	if n == 1 {
		delete(s.entityRooms, room)
		if s.connected {
			s.transport.Emit(model.LeaveEvent{Room: room, UserID: s.self.ID})
			s.transport.LeaveRoom(room)
		}
		return
	}
	s.entityRooms[room] = n - 1
}

func (s *Session) notify() {
	s.mu.Lock()
	fn := s.onUpdate
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
