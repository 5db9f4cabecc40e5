// internal/transport/transport.go
package transport

import (
	"context"

	"collab-service/internal/model"
)

// Transport is the bidirectional channel the collaboration session runs over.
// The session depends on this interface only; the websocket client below is
// the production implementation and tests substitute a fake.
type Transport interface {
	// Connect establishes the channel using the caller's credential. It
	// returns an error when the channel could not be established; the
	// session does not retry.
	Connect(ctx context.Context, credential string) error

	// Disconnect tears the channel down. Safe to call when not connected.
	Disconnect()

	// JoinRoom subscribes the connection to a room's broadcasts.
	JoinRoom(room string)

	// LeaveRoom unsubscribes the connection from a room.
	LeaveRoom(room string)

	// Emit publishes an event to the room named by the event itself.
	Emit(ev model.Event)

	// On registers a handler for one event kind and returns a function that
	// removes exactly that registration.
	On(kind model.EventKind, fn func(model.Event)) (off func())
}
