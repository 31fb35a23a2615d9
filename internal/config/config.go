package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	NATS        NATSConfig
	Cache       CacheConfig
	RateLimit   RateLimitConfig
	Services    ServicesConfig
	Moderation  ModerationConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// RedisConfig holds the shared cache backend configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
	EventsSubject  string
}

// CacheConfig holds edge cache configuration
type CacheConfig struct {
	DetailsTTL time.Duration
}

// RateLimitConfig holds limiter configuration. FailOpen decides whether a
// limiter backend outage admits or rejects traffic; this is a deployment
// policy, not a silent default.
type RateLimitConfig struct {
	FailOpen      bool
	CreateWindow  time.Duration
	CreateMax     int
	CheckInWindow time.Duration
	CheckInMax    int
	ClaimWindow   time.Duration
	ClaimMax      int
}

// ServicesConfig holds base routes and timeouts for collaborator services
type ServicesConfig struct {
	UsersBaseURL     string
	ReactionsBaseURL string
	MediaBaseURL     string
	MediaSafetyURL   string
	RequestTimeout   time.Duration
}

// ModerationConfig holds content moderation configuration
type ModerationConfig struct {
	ExtraBlockedTerms []string
	MediaCheckTimeout time.Duration
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "waypost"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
			EventsSubject:  getEnv("NATS_EVENTS_SUBJECT", "areas"),
		},
		Cache: CacheConfig{
			DetailsTTL: getEnvAsDuration("CACHE_DETAILS_TTL", 5*time.Minute),
		},
		RateLimit: RateLimitConfig{
			FailOpen:      getEnvAsBool("RATE_LIMIT_FAIL_OPEN", true),
			CreateWindow:  getEnvAsDuration("RATE_LIMIT_CREATE_WINDOW", 1*time.Minute),
			CreateMax:     getEnvAsInt("RATE_LIMIT_CREATE_MAX", 10),
			CheckInWindow: getEnvAsDuration("RATE_LIMIT_CHECKIN_WINDOW", 1*time.Minute),
			CheckInMax:    getEnvAsInt("RATE_LIMIT_CHECKIN_MAX", 5),
			ClaimWindow:   getEnvAsDuration("RATE_LIMIT_CLAIM_WINDOW", 10*time.Minute),
			ClaimMax:      getEnvAsInt("RATE_LIMIT_CLAIM_MAX", 3),
		},
		Services: ServicesConfig{
			UsersBaseURL:     getEnv("USERS_SERVICE_BASE_URL", "http://localhost:7771/v1"),
			ReactionsBaseURL: getEnv("REACTIONS_SERVICE_BASE_URL", "http://localhost:7772/v1"),
			MediaBaseURL:     getEnv("MEDIA_SERVICE_BASE_URL", "http://localhost:7773/v1"),
			MediaSafetyURL:   getEnv("MEDIA_SAFETY_BASE_URL", "http://localhost:7774/v1"),
			RequestTimeout:   getEnvAsDuration("SERVICES_REQUEST_TIMEOUT", 5*time.Second),
		},
		Moderation: ModerationConfig{
			ExtraBlockedTerms: getEnvAsSlice("MODERATION_EXTRA_BLOCKED_TERMS", nil),
			MediaCheckTimeout: getEnvAsDuration("MODERATION_MEDIA_CHECK_TIMEOUT", 8*time.Second),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Cache.DetailsTTL <= 0 {
		return fmt.Errorf("cache details TTL must be positive")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
