// internal/hub/client.go
package hub

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	userclient "collab-service/internal/client"
	"collab-service/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type client struct {
	conn  *websocket.Conn
	send  chan model.Envelope
	done  chan struct{}
	user  model.PresenceRecord
	rooms map[string]bool
}

// WSHandler upgrades collaboration websocket connections and feeds them into
// the hub.
type WSHandler struct {
	hub        *Hub
	userClient userclient.UserClient
	logger     *zap.Logger
}

func NewWSHandler(hub *Hub, userClient userclient.UserClient, logger *zap.Logger) *WSHandler {
	return &WSHandler{hub: hub, userClient: userClient, logger: logger}
}

// HandleWebSocket authenticates the caller, upgrades the connection, and
// starts the read/write pumps. Rooms are joined afterwards via join_room
// control frames.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	validation, err := h.userClient.ValidateToken(ctx, token)
	if err != nil || !validation.Valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	userID, err := uuid.Parse(validation.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	user := model.PresenceRecord{ID: userID, Name: "Unknown"}
	info, err := h.userClient.GetUserInfo(ctx, validation.UserID, token)
	if err != nil {
		h.logger.Warn("Failed to get user info", zap.Error(err))
	} else {
		user.Name = info.NickName
		user.Email = info.Email
		user.Avatar = info.ProfileImageURL
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", zap.Error(err))
		return
	}

	cl := &client{
		conn:  conn,
		send:  make(chan model.Envelope, 256),
		done:  make(chan struct{}),
		user:  user,
		rooms: make(map[string]bool),
	}

	h.hub.metrics.IncrementWSConnection()
	h.logger.Info("Collaboration WebSocket connected",
		zap.String("userId", user.ID.String()))

	go h.writePump(cl)
	go h.readPump(cl)
}

func (h *WSHandler) readPump(cl *client) {
	defer func() {
		h.hub.dropClient(cl)
		close(cl.done)
		cl.conn.Close()
		h.hub.metrics.DecrementWSConnection()
		h.logger.Info("Collaboration WebSocket disconnected",
			zap.String("userId", cl.user.ID.String()))
	}()

	cl.conn.SetReadLimit(maxMessageSize)
	cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		cl.conn.SetReadDeadline(time.Now().Add(pongWait))
		h.hub.refreshPresence(cl)
		return nil
	})

	for {
		var env model.Envelope
		if err := cl.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		if env.IsControl() {
			switch env.Event {
			case model.ControlJoinRoom:
				h.hub.joinRoom(cl, env.Room)
			case model.ControlLeaveRoom:
				h.hub.leaveRoom(cl, env.Room)
			}
			continue
		}

		ev, err := model.DecodeEnvelope(env)
		if err != nil {
			h.logger.Warn("Dropping undecodable frame",
				zap.String("userId", cl.user.ID.String()), zap.Error(err))
			continue
		}
		h.hub.relay(cl, ev)
	}
}

func (h *WSHandler) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case env := <-cl.send:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteJSON(env); err != nil {
				return
			}

		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-cl.done:
			cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
