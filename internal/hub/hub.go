// internal/hub/hub.go
package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"collab-service/internal/database"
	"collab-service/internal/metrics"
	"collab-service/internal/model"
	"collab-service/internal/repository"
)

// Hub is the server side of the collaboration layer. It keeps the room
// membership of this instance's connections, relays signals into their
// declared rooms, and rebroadcasts the authoritative roster whenever
// membership changes. With redis available, fanout goes through one pub/sub
// channel per room so every instance delivers to its own connections.
type Hub struct {
	logger   *zap.Logger
	rdb      *redis.Client
	presence repository.PresenceRepository
	metrics  *metrics.Metrics

	mu    sync.RWMutex
	rooms map[string]map[*client]bool
	subs  map[string]*roomSub
}

type roomSub struct {
	pubsub *redis.PubSub
}

// New creates a hub. rdb and presence may be nil; the hub then runs
// single-instance with in-memory rosters only.
func New(rdb *redis.Client, presence repository.PresenceRepository, m *metrics.Metrics, logger *zap.Logger) *Hub {
	return &Hub{
		logger:   logger,
		rdb:      rdb,
		presence: presence,
		metrics:  m,
		rooms:    make(map[string]map[*client]bool),
		subs:     make(map[string]*roomSub),
	}
}

// RoomCount returns the number of rooms with at least one local member.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func (h *Hub) joinRoom(c *client, room string) {
	if room == "" {
		return
	}

	h.mu.Lock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*client]bool)
	}
	if h.rooms[room][c] {
		// Duplicate join from the same connection is a no-op.
		h.mu.Unlock()
		return
	}
	h.rooms[room][c] = true
	c.rooms[room] = true
	h.mu.Unlock()

	h.ensureSubscription(room)

	if h.presence != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := h.presence.Track(ctx, room, c.user); err != nil {
			h.logger.Warn("Failed to track presence",
				zap.String("room", room), zap.Error(err))
		}
		cancel()
	}

	h.metrics.IncrementRoomJoin()
	h.logger.Info("Client joined room",
		zap.String("room", room),
		zap.String("userId", c.user.ID.String()))

	h.broadcastRoster(room)
}

func (h *Hub) leaveRoom(c *client, room string) {
	h.mu.Lock()
	members, ok := h.rooms[room]
	if !ok || !members[c] {
		h.mu.Unlock()
		return
	}
	delete(members, c)
	delete(c.rooms, room)
	empty := len(members) == 0
	if empty {
		delete(h.rooms, room)
	}
	h.mu.Unlock()

	if empty {
		h.dropSubscription(room)
	}

	if h.presence != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := h.presence.Untrack(ctx, room, c.user.ID); err != nil {
			h.logger.Warn("Failed to untrack presence",
				zap.String("room", room), zap.Error(err))
		}
		cancel()
	}

	h.metrics.IncrementRoomLeave()
	h.logger.Info("Client left room",
		zap.String("room", room),
		zap.String("userId", c.user.ID.String()))

	h.broadcastRoster(room)
}

// dropClient removes a connection from every room it was in. A connection
// that disappeared without leave frames still triggers roster rebroadcasts,
// so peers converge without its user_left ever arriving.
func (h *Hub) dropClient(c *client) {
	h.mu.Lock()
	rooms := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
	}
	h.mu.Unlock()

	for _, room := range rooms {
		h.leaveRoom(c, room)
	}
}

// refreshPresence extends the presence TTL for every room the connection is
// in. Called from the pong handler, so liveness is tied to the ping cycle.
func (h *Hub) refreshPresence(c *client) {
	if h.presence == nil {
		return
	}

	h.mu.RLock()
	rooms := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
	}
	h.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, room := range rooms {
		if err := h.presence.Refresh(ctx, room, c.user.ID); err != nil {
			h.logger.Debug("Failed to refresh presence",
				zap.String("room", room), zap.Error(err))
		}
	}
}

// relay forwards a collaboration event from a connection into its declared
// room. The sender's identity is stamped server-side so a client can never
// speak for another user, and events for rooms the connection is not in are
// dropped.
func (h *Hub) relay(c *client, ev model.Event) {
	room := ev.RoomKey()

	h.mu.RLock()
	member := c.rooms[room]
	h.mu.RUnlock()
	if !member {
		h.logger.Warn("Dropping event for room the sender is not in",
			zap.String("event", string(ev.Kind())),
			zap.String("room", room),
			zap.String("userId", c.user.ID.String()))
		return
	}

	switch e := ev.(type) {
	case model.CursorEvent:
		e.Signal.UserID = c.user.ID
		e.Signal.Username = c.user.Name
		ev = e
	case model.EditingEvent:
		e.Signal.UserID = c.user.ID
		ev = e
	case model.ActivityEvent:
		e.Signal.UserID = c.user.ID
		ev = e
	case model.JoinEvent:
		e.User = c.user
		ev = e
	case model.LeaveEvent:
		e.UserID = c.user.ID
		ev = e
	case model.RosterEvent:
		// Rosters are hub-authoritative; clients cannot publish them.
		return
	}

	env, err := model.EncodeEvent(ev)
	if err != nil {
		h.logger.Warn("Failed to encode relayed event", zap.Error(err))
		return
	}

	h.metrics.IncrementSignalRelayed(string(ev.Kind()))
	h.broadcast(room, env)
}

// broadcastRoster sends the full membership of a room as an active_users
// event. Receivers replace their roster wholesale.
func (h *Hub) broadcastRoster(room string) {
	users := h.roster(room)

	env, err := model.EncodeEvent(model.RosterEvent{Room: room, Users: users})
	if err != nil {
		h.logger.Warn("Failed to encode roster", zap.Error(err))
		return
	}
	h.broadcast(room, env)
}

func (h *Hub) roster(room string) []model.PresenceRecord {
	if h.presence != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		users, err := h.presence.ListRoom(ctx, room)
		if err == nil {
			return users
		}
		h.logger.Warn("Falling back to local roster",
			zap.String("room", room), zap.Error(err))
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	users := make([]model.PresenceRecord, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		users = append(users, c.user)
	}
	return users
}

func (h *Hub) broadcast(room string, env model.Envelope) {
	if h.rdb != nil {
		payload, err := json.Marshal(env)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			err = h.rdb.Publish(ctx, database.RoomChannel(room), payload).Err()
			cancel()
			if err == nil {
				// Local delivery happens through this instance's room
				// subscription.
				return
			}
			h.logger.Warn("Redis publish failed, delivering locally",
				zap.String("room", room), zap.Error(err))
		}
	}
	h.deliverLocal(room, env)
}

func (h *Hub) deliverLocal(room string, env model.Envelope) {
	h.mu.RLock()
	members := make([]*client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		select {
		case c.send <- env:
		default:
			h.logger.Warn("Client send buffer full, dropping frame",
				zap.String("room", room),
				zap.String("userId", c.user.ID.String()))
		}
	}
}

func (h *Hub) ensureSubscription(room string) {
	if h.rdb == nil {
		return
	}

	h.mu.Lock()
	if h.subs[room] != nil {
		h.mu.Unlock()
		return
	}
	pubsub := h.rdb.Subscribe(context.Background(), database.RoomChannel(room))
	h.subs[room] = &roomSub{pubsub: pubsub}
	h.mu.Unlock()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				h.logger.Error("Recovered from panic in room subscription",
					zap.Any("panic", r), zap.String("room", room))
			}
		}()

		for msg := range pubsub.Channel() {
			var env model.Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.logger.Warn("Dropping undecodable fanout frame",
					zap.String("room", room), zap.Error(err))
				continue
			}
			h.deliverLocal(room, env)
		}
	}()
}

func (h *Hub) dropSubscription(room string) {
	h.mu.Lock()
	sub := h.subs[room]
	delete(h.subs, room)
	h.mu.Unlock()

	if sub != nil {
		sub.pubsub.Close()
	}
}
