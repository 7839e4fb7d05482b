package common

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultAPIBaseURL is used when API_BASE_URL is not set.
const DefaultAPIBaseURL = "http://127.0.0.1:8000"

// Config holds all application configuration
type Config struct {
	API     APIConfig
	Server  ServerConfig
	Session SessionConfig
	CLI     CLIConfig
}

// APIConfig holds settings for the upstream job-board API
type APIConfig struct {
	BaseURL string
	Timeout time.Duration // 0 keeps the transport default
}

// ServerConfig holds web-server configuration
type ServerConfig struct {
	HTTPAddr           string
	HealthGRPCAddr     string
	CORSAllowedOrigins []string
	TemplateDebug      bool
}

// SessionConfig holds token-store configuration
type SessionConfig struct {
	SQLitePath      string
	PostgresURL     string
	CookieName      string
	CookieSecure    bool
	CookieMaxAge    time.Duration
	MaxConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// CLIConfig holds jobctl configuration
type CLIConfig struct {
	TokenFile string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: strings.TrimRight(getEnv("API_BASE_URL", DefaultAPIBaseURL), "/"),
			Timeout: getEnvAsDuration("HTTP_TIMEOUT", 0),
		},
		Server: ServerConfig{
			HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
			HealthGRPCAddr:     getEnv("HEALTH_GRPC_ADDR", ""),
			CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
			TemplateDebug:      getEnvAsBool("TEMPLATE_DEBUG", false),
		},
		Session: SessionConfig{
			SQLitePath:      getEnv("SESSION_DB", "jobboard-sessions.sqlite"),
			PostgresURL:     getEnv("SESSION_DB_URL", ""),
			CookieName:      getEnv("SESSION_COOKIE_NAME", "jobboard_sid"),
			CookieSecure:    getEnvAsBool("SESSION_COOKIE_SECURE", false),
			CookieMaxAge:    getEnvAsDuration("SESSION_COOKIE_MAX_AGE", 30*24*time.Hour),
			MaxConns:        getEnvAsInt32("SESSION_DB_MAX_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("SESSION_DB_MAX_CONN_LIFETIME", 30*time.Minute),
			DialTimeout:     getEnvAsDuration("SESSION_DB_DIAL_TIMEOUT", 3*time.Second),
		},
		CLI: CLIConfig{
			TokenFile: getEnv("JOBCTL_TOKEN_FILE", defaultTokenFile()),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".jobctl-session.json"
	}
	return filepath.Join(dir, "jobctl", "session.json")
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return NewAppError("CONFIG_ERROR", "API_BASE_URL must be an absolute URL", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Session.CookieName == "" {
		return NewAppError("CONFIG_ERROR", "SESSION_COOKIE_NAME is required", ErrInvalidInput)
	}
	if c.Session.PostgresURL == "" && c.Session.SQLitePath == "" {
		return NewAppError("CONFIG_ERROR", "SESSION_DB or SESSION_DB_URL is required", ErrInvalidInput)
	}
	return nil
}
