package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Services ServicesConfig `yaml:"services"`
	Collab   CollabConfig   `yaml:"collab"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	BasePath string `yaml:"base_path"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type AuthConfig struct {
	ServiceURL string `yaml:"service_url"`
	SecretKey  string `yaml:"secret_key"`
}

type ServicesConfig struct {
	UserServiceURL string `yaml:"user_service_url"`
}

// CollabConfig tunes the realtime layer: the session-side staleness sweep and
// the hub-side presence bookkeeping.
type CollabConfig struct {
	SweepInterval  time.Duration `yaml:"sweep_interval"`
	CursorTTL      time.Duration `yaml:"cursor_ttl"`
	EditingTTL     time.Duration `yaml:"editing_ttl"`
	ActivityTTL    time.Duration `yaml:"activity_ttl"`
	PresenceKeyTTL time.Duration `yaml:"presence_key_ttl"`
	JanitorSpec    string        `yaml:"janitor_spec"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:     8002,
			BasePath: "/api/collab",
			Env:      "dev",
			LogLevel: "debug",
		},
		Redis: RedisConfig{
			URL: "redis://localhost:6379/3",
		},
		Collab: CollabConfig{
			SweepInterval:  10 * time.Second,
			CursorTTL:      30 * time.Second,
			EditingTTL:     60 * time.Second,
			PresenceKeyTTL: 90 * time.Second,
			JanitorSpec:    "@every 1m",
		},
	}

	// Load from yaml file if exists
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override with environment variables
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if basePath := os.Getenv("SERVER_BASE_PATH"); basePath != "" {
		cfg.Server.BasePath = basePath
	}
	if env := os.Getenv("ENV"); env != "" {
		cfg.Server.Env = env
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.Server.LogLevel = logLevel
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis.URL = redisURL
	}
	if authURL := os.Getenv("AUTH_SERVICE_URL"); authURL != "" {
		cfg.Auth.ServiceURL = authURL
	}
	if secretKey := os.Getenv("SECRET_KEY"); secretKey != "" {
		cfg.Auth.SecretKey = secretKey
	}
	if userURL := os.Getenv("USER_SERVICE_URL"); userURL != "" {
		cfg.Services.UserServiceURL = userURL
	}
	if v := os.Getenv("COLLAB_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Collab.SweepInterval = d
		}
	}
	if v := os.Getenv("COLLAB_CURSOR_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Collab.CursorTTL = d
		}
	}
	if v := os.Getenv("COLLAB_EDITING_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Collab.EditingTTL = d
		}
	}
	if v := os.Getenv("COLLAB_ACTIVITY_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Collab.ActivityTTL = d
		}
	}
	if v := os.Getenv("COLLAB_PRESENCE_KEY_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Collab.PresenceKeyTTL = d
		}
	}

	return cfg, nil
}
