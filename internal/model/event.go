// internal/model/event.go
package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// EventKind names one of the collaboration events exchanged over the
// transport. The set is closed: DecodeEnvelope rejects anything else.
type EventKind string

const (
	EventActiveUsers    EventKind = "active_users"
	EventCursorUpdate   EventKind = "cursor_update"
	EventEditingStatus  EventKind = "editing_status"
	EventActivityUpdate EventKind = "activity_update"
	EventUserJoined     EventKind = "user_joined"
	EventUserLeft       EventKind = "user_left"
)

// Control frame names used by the websocket transport. They are connection
// commands, not collaboration events, and never reach the session layer.
const (
	ControlJoinRoom  = "join_room"
	ControlLeaveRoom = "leave_room"
)

// Event is one decoded collaboration event. Every event carries the room it
// was broadcast to; events for rooms a session is not in are ignored there.
type Event interface {
	Kind() EventKind
	RoomKey() string
}

// RosterEvent is a full-replacement roster broadcast for a room.
type RosterEvent struct {
	Room  string           `json:"-"`
	Users []PresenceRecord `json:"users"`
}

// CursorEvent carries one user's cursor position.
type CursorEvent struct {
	Room   string `json:"-"`
	Signal CursorSignal
}

// EditingEvent carries one user's editing status for an entity.
type EditingEvent struct {
	Room   string `json:"-"`
	Signal EditingSignal
}

// ActivityEvent carries one user's latest activity entry.
type ActivityEvent struct {
	Room   string `json:"-"`
	Signal ActivitySignal
}

// JoinEvent announces a user entering a room.
type JoinEvent struct {
	Room string         `json:"-"`
	User PresenceRecord `json:"user"`
}

// LeaveEvent announces a user leaving a room.
type LeaveEvent struct {
	Room   string    `json:"-"`
	UserID uuid.UUID `json:"userId"`
}

func (e RosterEvent) Kind() EventKind   { return EventActiveUsers }
func (e CursorEvent) Kind() EventKind   { return EventCursorUpdate }
func (e EditingEvent) Kind() EventKind  { return EventEditingStatus }
func (e ActivityEvent) Kind() EventKind { return EventActivityUpdate }
func (e JoinEvent) Kind() EventKind     { return EventUserJoined }
func (e LeaveEvent) Kind() EventKind    { return EventUserLeft }

func (e RosterEvent) RoomKey() string   { return e.Room }
func (e CursorEvent) RoomKey() string   { return e.Room }
func (e EditingEvent) RoomKey() string  { return e.Room }
func (e ActivityEvent) RoomKey() string { return e.Room }
func (e JoinEvent) RoomKey() string     { return e.Room }
func (e LeaveEvent) RoomKey() string    { return e.Room }

// Envelope is the wire frame shared by collaboration events and transport
// control commands.
type Envelope struct {
	Event   string          `json:"event"`
	Room    string          `json:"room"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// IsControl reports whether the envelope is a transport control frame.
func (e Envelope) IsControl() bool {
	return e.Event == ControlJoinRoom || e.Event == ControlLeaveRoom
}

// EncodeEvent wraps an event into a wire envelope.
func EncodeEvent(ev Event) (Envelope, error) {
	var payload any
	switch v := ev.(type) {
	case RosterEvent:
		payload = v
	case CursorEvent:
		payload = v.Signal
	case EditingEvent:
		payload = v.Signal
	case ActivityEvent:
		payload = v.Signal
	case JoinEvent:
		payload = v
	case LeaveEvent:
		payload = v
	default:
		return Envelope{}, fmt.Errorf("unknown event type %T", ev)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", ev.Kind(), err)
	}

	return Envelope{
		Event:   string(ev.Kind()),
		Room:    ev.RoomKey(),
		Payload: raw,
	}, nil
}

// DecodeEnvelope turns a wire envelope back into a typed event. Control
// frames and unknown event names are rejected.
func DecodeEnvelope(env Envelope) (Event, error) {
	switch EventKind(env.Event) {
	case EventActiveUsers:
		var ev RosterEvent
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return nil, fmt.Errorf("failed to decode roster payload: %w", err)
		}
		ev.Room = env.Room
		return ev, nil

	case EventCursorUpdate:
		var sig CursorSignal
		if err := json.Unmarshal(env.Payload, &sig); err != nil {
			return nil, fmt.Errorf("failed to decode cursor payload: %w", err)
		}
		return CursorEvent{Room: env.Room, Signal: sig}, nil

	case EventEditingStatus:
		var sig EditingSignal
		if err := json.Unmarshal(env.Payload, &sig); err != nil {
			return nil, fmt.Errorf("failed to decode editing payload: %w", err)
		}
		return EditingEvent{Room: env.Room, Signal: sig}, nil

	case EventActivityUpdate:
		var sig ActivitySignal
		if err := json.Unmarshal(env.Payload, &sig); err != nil {
			return nil, fmt.Errorf("failed to decode activity payload: %w", err)
		}
		return ActivityEvent{Room: env.Room, Signal: sig}, nil

	case EventUserJoined:
		var ev JoinEvent
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return nil, fmt.Errorf("failed to decode join payload: %w", err)
		}
		ev.Room = env.Room
		return ev, nil

	case EventUserLeft:
		var ev LeaveEvent
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return nil, fmt.Errorf("failed to decode leave payload: %w", err)
		}
		ev.Room = env.Room
		return ev, nil
	}

	return nil, fmt.Errorf("unknown event %q", env.Event)
}
