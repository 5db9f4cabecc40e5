// internal/transport/ws_client.go
package transport

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"collab-service/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192

	sendBuffer = 256
)

// WSClient implements Transport over a single gorilla/websocket connection to
// the collaboration hub.
type WSClient struct {
	endpoint string
	logger   *zap.Logger

	mu       sync.RWMutex
	conn     *websocket.Conn
	send     chan model.Envelope
	done     chan struct{}
	handlers map[model.EventKind]map[int]func(model.Event)
	nextID   int
}

// NewWSClient creates a client for the hub websocket endpoint, e.g.
// "ws://localhost:8002/api/collab/ws".
func NewWSClient(endpoint string, logger *zap.Logger) *WSClient {
	return &WSClient{
		endpoint: endpoint,
		logger:   logger,
		handlers: make(map[model.EventKind]map[int]func(model.Event)),
	}
}

func (c *WSClient) Connect(ctx context.Context, credential string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	q := u.Query()
	q.Set("token", credential)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to dial collaboration hub: %w", err)
	}

	c.conn = conn
	c.send = make(chan model.Envelope, sendBuffer)
	c.done = make(chan struct{})

	go c.writePump(conn, c.send, c.done)
	go c.readPump(conn, c.done)

	return nil
}

func (c *WSClient) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return
	}
	close(c.done)
	c.conn.Close()
	c.conn = nil
	c.send = nil
}

func (c *WSClient) JoinRoom(room string) {
	c.enqueue(model.Envelope{Event: model.ControlJoinRoom, Room: room})
}

func (c *WSClient) LeaveRoom(room string) {
	c.enqueue(model.Envelope{Event: model.ControlLeaveRoom, Room: room})
}

func (c *WSClient) Emit(ev model.Event) {
	env, err := model.EncodeEvent(ev)
	if err != nil {
		c.logger.Warn("Failed to encode outbound event", zap.Error(err))
		return
	}
	c.enqueue(env)
}

func (c *WSClient) On(kind model.EventKind, fn func(model.Event)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handlers[kind] == nil {
		c.handlers[kind] = make(map[int]func(model.Event))
	}
	id := c.nextID
	c.nextID++
	c.handlers[kind][id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers[kind], id)
	}
}

func (c *WSClient) enqueue(env model.Envelope) {
	c.mu.RLock()
	send := c.send
	c.mu.RUnlock()

	if send == nil {
		return
	}
	select {
	case send <- env:
	default:
		c.logger.Warn("Outbound buffer full, dropping frame",
			zap.String("event", env.Event),
			zap.String("room", env.Room))
	}
}

func (c *WSClient) dispatch(ev model.Event) {
	c.mu.RLock()
	fns := make([]func(model.Event), 0, len(c.handlers[ev.Kind()]))
	for _, fn := range c.handlers[ev.Kind()] {
		fns = append(fns, fn)
	}
	c.mu.RUnlock()

	// Handlers run one at a time on the reader goroutine, so each event is
	// fully processed before the next is read.
	for _, fn := range fns {
		fn(ev)
	}
}

func (c *WSClient) readPump(conn *websocket.Conn, done chan struct{}) {
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var env model.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			select {
			case <-done:
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					c.logger.Error("WebSocket read error", zap.Error(err))
				}
			}
			return
		}

		ev, err := model.DecodeEnvelope(env)
		if err != nil {
			c.logger.Warn("Dropping undecodable frame", zap.Error(err))
			continue
		}
		c.dispatch(ev)
	}
}

func (c *WSClient) writePump(conn *websocket.Conn, send chan model.Envelope, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case env := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(env); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}
