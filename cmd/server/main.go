package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"collab-service/internal/client"
	"collab-service/internal/config"
	"collab-service/internal/database"
	"collab-service/internal/job"
	"collab-service/internal/metrics"
	"collab-service/internal/repository"
	"collab-service/internal/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Server.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	corsOrigins := getEnv("CORS_ORIGINS", "*")

	logger.Info("Starting Collab Service",
		zap.Int("port", cfg.Server.Port),
		zap.String("env", cfg.Server.Env),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("user_api_url", cfg.Services.UserServiceURL),
		zap.String("auth_api_url", cfg.Auth.ServiceURL),
	)

	// Redis connection. The service stays up without it: the hub degrades to
	// single-instance fanout and REST presence queries return empty.
	redisClient, err := database.NewRedis(cfg.Redis.URL)
	if err != nil {
		logger.Warn("Failed to connect to Redis, running single-instance", zap.Error(err))
		redisClient = nil
	} else {
		logger.Info("Redis connected")
	}

	// Initialize metrics
	m := metrics.New(logger)

	// User Service client (token validation goes through auth-service)
	userClient := client.NewUserClient(
		cfg.Services.UserServiceURL,
		cfg.Auth.ServiceURL,
		10*time.Second,
	)

	// Router wires hub, services and handlers
	r := router.Setup(cfg, redisClient, userClient, m, corsOrigins, logger)

	// Presence janitor keeps the room/user gauges fresh
	if redisClient != nil {
		presenceRepo := repository.NewPresenceRepository(redisClient, cfg.Collab.PresenceKeyTTL)
		janitor := job.NewPresenceJanitor(presenceRepo, m, logger)

		c := cron.New()
		if _, err := c.AddJob(cfg.Collab.JanitorSpec, janitor); err != nil {
			logger.Warn("Failed to schedule presence janitor", zap.Error(err))
		} else {
			c.Start()
			defer c.Stop()
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Collab Service started successfully",
			zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// initLogger initializes the zap logger with the specified level
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
