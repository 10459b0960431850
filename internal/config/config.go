package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for golf-web
type Config struct {
	Server  ServerConfig
	API     APIConfig
	Redis   RedisConfig
	Session SessionConfig
	Cleanup CleanupConfig
	Site    SiteConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string
	Port int
}

// APIConfig holds the golf API client configuration
type APIConfig struct {
	URL     string
	Timeout time.Duration
}

// RedisConfig holds the shared leaderboard cache configuration.
// An empty Address keeps leaderboards in per-session memory.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// SessionConfig holds browser session configuration
type SessionConfig struct {
	IdleTimeout time.Duration
	FileLimit   int64
}

// CleanupConfig holds idle session reaper configuration
type CleanupConfig struct {
	Interval time.Duration
}

// SiteConfig holds static build configuration
type SiteConfig struct {
	Manifest string
	Fonts    string
	OutDir   string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		API: APIConfig{
			URL:     getEnv("GOLF_API_URL", "https://code-golf.iannis.io"),
			Timeout: getEnvAsDuration("GOLF_API_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      getEnvAsDuration("LEADERBOARD_TTL", 10*time.Minute),
		},
		Session: SessionConfig{
			IdleTimeout: getEnvAsDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
			FileLimit:   int64(getEnvAsInt("SUBMIT_FILE_LIMIT", 1<<20)),
		},
		Cleanup: CleanupConfig{
			Interval: getEnvAsDuration("CLEANUP_INTERVAL", 5*time.Minute),
		},
		Site: SiteConfig{
			Manifest: getEnv("SITE_MANIFEST", ""),
			Fonts:    getEnv("SITE_FONTS", "https://fonts.googleapis.com"),
			OutDir:   getEnv("SITE_OUT_DIR", "./dist"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	u, err := url.Parse(c.API.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid golf API URL: %q", c.API.URL)
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("golf API timeout must be positive")
	}

	if c.Session.FileLimit <= 0 {
		return fmt.Errorf("submit file limit must be positive")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Log.Level)
	}

	return nil
}

// Addr returns the server listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
