package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"collab-service/internal/service"
)

type PresenceHandler struct {
	presenceService *service.PresenceService
	logger          *zap.Logger
}

func NewPresenceHandler(presenceService *service.PresenceService, logger *zap.Logger) *PresenceHandler {
	return &PresenceHandler{
		presenceService: presenceService,
		logger:          logger,
	}
}

// GetRoomUsers returns the users currently present in a room
func (h *PresenceHandler) GetRoomUsers(c *gin.Context) {
	room := c.Param("roomKey")
	if room == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "BAD_REQUEST", "message": "Room key required"},
		})
		return
	}

	users, err := h.presenceService.RoomUsers(c.Request.Context(), room)
	if err != nil {
		h.logger.Error("failed to get room presence",
			zap.String("room", room), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "INTERNAL_ERROR", "message": "Failed to get room presence"},
		})
		return
	}

	c.JSON(http.StatusOK, ToRoomPresenceResponse(room, users))
}

// GetUserStatus reports whether a user is present in the given room
func (h *PresenceHandler) GetUserStatus(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "BAD_REQUEST", "message": "Invalid user ID"},
		})
		return
	}

	room := c.Query("room")
	if room == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "BAD_REQUEST", "message": "Room query parameter required"},
		})
		return
	}

	online, err := h.presenceService.IsUserInRoom(c.Request.Context(), room, userID)
	if err != nil {
		h.logger.Error("failed to get user presence", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "INTERNAL_ERROR", "message": "Failed to get user presence"},
		})
		return
	}

	c.JSON(http.StatusOK, UserStatusResponse{
		UserID: userID.String(),
		Room:   room,
		Online: online,
	})
}

// GetRoomStats returns occupancy per active room
func (h *PresenceHandler) GetRoomStats(c *gin.Context) {
	stats, err := h.presenceService.RoomStats(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to get room stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "INTERNAL_ERROR", "message": "Failed to get room stats"},
		})
		return
	}

	c.JSON(http.StatusOK, ToRoomStatsResponse(stats))
}
