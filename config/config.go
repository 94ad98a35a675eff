package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the gateway configuration.
// All durable state lives in the processing backend; this layer only needs
// to know where that backend is, where Redis keeps session scratch data,
// and how to present itself to browsers.
type Config struct {
	ListenAddr string // address the HTTP gateway binds to
	Env        string // "development" or "production"

	// BackendAPIURL is the single authoritative origin of the processing
	// backend. Earlier clients read two differently named variables for
	// the same value; BACKEND_API_URL is the one that counts now.
	BackendAPIURL   string
	UpstreamTimeout time.Duration // per-call budget for JSON endpoints
	GenerateTimeout time.Duration // budget for quiz/audio generation calls

	// Session document cache (Redis).
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	// Logging.
	LogLevel string
	LogPath  string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvDuration gets an environment variable as a duration in seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load will not override variables already set in the environment.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		Env:        getEnv("APP_ENV", "development"),

		BackendAPIURL:   getEnv("BACKEND_API_URL", "http://localhost:8000"),
		UpstreamTimeout: getEnvDuration("UPSTREAM_TIMEOUT_SECONDS", 30*time.Second),
		GenerateTimeout: getEnvDuration("GENERATE_TIMEOUT_SECONDS", 120*time.Second),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		SessionTTL:    getEnvDuration("SESSION_TTL_SECONDS", 2*time.Hour),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogPath:  getEnv("LOG_PATH", ""),
	}
}

// CookieSecure reports whether auth cookies should carry the Secure flag.
// Local development runs over plain HTTP.
func (c *Config) CookieSecure() bool {
	return c.Env == "production"
}
