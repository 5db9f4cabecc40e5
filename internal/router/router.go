package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	userclient "collab-service/internal/client"
	"collab-service/internal/config"
	"collab-service/internal/handler"
	"collab-service/internal/hub"
	"collab-service/internal/metrics"
	"collab-service/internal/middleware"
	"collab-service/internal/repository"
	"collab-service/internal/service"
)

// Setup wires the hub, services, and handlers into a gin engine.
func Setup(
	cfg *config.Config,
	redisClient *redis.Client,
	userClient userclient.UserClient,
	m *metrics.Metrics,
	corsOrigins string,
	logger *zap.Logger,
) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(corsOrigins))
	r.Use(middleware.Metrics(m))

	// Presence repository is redis-backed; without redis the hub falls back
	// to instance-local rosters and REST presence queries are disabled.
	var presenceRepo repository.PresenceRepository
	if redisClient != nil {
		presenceRepo = repository.NewPresenceRepository(redisClient, cfg.Collab.PresenceKeyTTL)
	}

	collabHub := hub.New(redisClient, presenceRepo, m, logger)
	wsHandler := hub.NewWSHandler(collabHub, userClient, logger)

	presenceService := service.NewPresenceService(presenceRepo, logger)
	presenceHandler := handler.NewPresenceHandler(presenceService, logger)
	healthHandler := handler.NewHealthHandler(redisClient)

	validator := middleware.NewAuthServiceValidator(cfg.Auth.ServiceURL, cfg.Auth.SecretKey, logger)

	// Health endpoints (no auth)
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes with base path
	api := r.Group(cfg.Server.BasePath)
	{
		api.GET("/health", healthHandler.Health)
		api.GET("/ready", healthHandler.Ready)

		// WebSocket endpoint (token validated during the upgrade)
		api.GET("/ws", wsHandler.HandleWebSocket)

		// Authenticated routes
		authenticated := api.Group("")
		authenticated.Use(middleware.AuthMiddleware(validator))
		{
			authenticated.GET("/presence/room/:roomKey", presenceHandler.GetRoomUsers)
			authenticated.GET("/presence/status/:userId", presenceHandler.GetUserStatus)
			authenticated.GET("/rooms/stats", presenceHandler.GetRoomStats)
		}
	}

	return r
}
