package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIURL      = "http://localhost:5000"
	defaultSessionKey  = "storefront.auth"
	defaultTokenKey    = "storefront.token"
	defaultSessionFile = ".storefront-session.json"
)

// Session storage backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

var AppEnv Config

type Config struct {
	APIBaseURL         string
	Port               string
	LogLevel           slog.Level
	SessionBackend     string
	SessionFile        string
	RedisURL           string
	SessionKey         string
	TokenKey           string
	TokenRefreshWindow time.Duration
}

// Load reads .env (when present) and the process environment into AppEnv.
func Load() {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env not loaded", "err", err)
	}
	AppEnv = FromEnv()
}

// FromEnv builds a Config from the current environment without touching AppEnv.
func FromEnv() Config {
	return Config{
		APIBaseURL:         strings.TrimRight(getEnvOrDefault("STOREFRONT_API_URL", defaultAPIURL), "/"),
		Port:               getEnvOrDefault("PORT", "8080"),
		LogLevel:           getLogLevel("LOG_LEVEL"),
		SessionBackend:     strings.ToLower(getEnvOrDefault("SESSION_BACKEND", BackendFile)),
		SessionFile:        getEnvOrDefault("SESSION_FILE", defaultSessionFile),
		RedisURL:           getEnvOrDefault("REDIS_URL", ""),
		SessionKey:         getEnvOrDefault("SESSION_KEY", defaultSessionKey),
		TokenKey:           getEnvOrDefault("TOKEN_KEY", defaultTokenKey),
		TokenRefreshWindow: getDurationEnv("TOKEN_REFRESH_WINDOW", 2*time.Minute),
	}
}

// Validate reports settings the application cannot start with.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("STOREFRONT_API_URL must be an absolute URL, got %q", c.APIBaseURL)
	}

	switch c.SessionBackend {
	case BackendFile:
		if c.SessionFile == "" {
			return fmt.Errorf("SESSION_FILE is required for the file session backend")
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis session backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}

	if c.SessionKey == c.TokenKey {
		return fmt.Errorf("SESSION_KEY and TOKEN_KEY must differ")
	}
	return nil
}
