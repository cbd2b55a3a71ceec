// internal/config/config.go
// Centralized configuration management
// Loads from environment variables with sensible defaults

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string

	// Storage
	DatabaseURL string
	RedisURL    string

	// Logging
	LogLevel  string
	LogFormat string

	// Event stream
	EventStream       string
	EventStreamMaxLen int64
	ConsumerName      string
	ConsumerBatch     int64
	ConsumerBlock     time.Duration
	EnableConsumers   bool

	// Ranking
	RecommendationLimit int
	CandidatePoolSize   int
	SuggestionThreshold float64
	SuggestionLimit     int
	ShuffleSeed         int64

	// Feature vectors
	VectorCacheTTL        time.Duration
	VectorRefreshInterval time.Duration
	VectorStaleAfter      time.Duration

	// Trust & safety
	BehavioralTrustThreshold float64
	SafetyMessageRate        int
}

// Load reads configuration from environment variables
func Load() *Config {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "matching-1"
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		EventStream:       getEnv("EVENT_STREAM", "dating_events"),
		EventStreamMaxLen: int64(getEnvInt("EVENT_STREAM_MAXLEN", 100000)),
		ConsumerName:      getEnv("CONSUMER_NAME", hostname),
		ConsumerBatch:     int64(getEnvInt("CONSUMER_BATCH", 10)),
		ConsumerBlock:     getEnvDuration("CONSUMER_BLOCK", "5s"),
		EnableConsumers:   getEnvBool("ENABLE_CONSUMERS", true),

		RecommendationLimit: getEnvInt("RECOMMENDATION_LIMIT", 10),
		CandidatePoolSize:   getEnvInt("CANDIDATE_POOL_SIZE", 50),
		SuggestionThreshold: getEnvFloat("SUGGESTION_THRESHOLD", 0.6),
		SuggestionLimit:     getEnvInt("SUGGESTION_LIMIT", 10),
		ShuffleSeed:         int64(getEnvInt("SHUFFLE_SEED", 0)),

		VectorCacheTTL:        getEnvDuration("VECTOR_CACHE_TTL", "1h"),
		VectorRefreshInterval: getEnvDuration("VECTOR_REFRESH_INTERVAL", "1h"),
		VectorStaleAfter:      getEnvDuration("VECTOR_STALE_AFTER", "24h"),

		BehavioralTrustThreshold: getEnvFloat("BEHAVIORAL_TRUST_THRESHOLD", 0.8),
		SafetyMessageRate:        getEnvInt("SAFETY_MESSAGE_RATE", 50),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database URL is required")
	}

	if c.RedisURL == "" && c.IsProduction() {
		return fmt.Errorf("redis URL is required for production")
	}

	if c.EventStream == "" {
		return fmt.Errorf("event stream name is required")
	}

	if c.ConsumerBatch < 1 || c.ConsumerBatch > 1000 {
		return fmt.Errorf("consumer batch must be between 1 and 1000")
	}

	if c.RecommendationLimit < 1 || c.RecommendationLimit > c.CandidatePoolSize {
		return fmt.Errorf("recommendation limit must be between 1 and the candidate pool size")
	}

	if c.CandidatePoolSize < 1 || c.CandidatePoolSize > 500 {
		return fmt.Errorf("candidate pool size must be between 1 and 500")
	}

	if c.SuggestionThreshold < 0 || c.SuggestionThreshold > 1 {
		return fmt.Errorf("suggestion threshold must be within [0,1]")
	}

	if c.SuggestionLimit < 1 {
		return fmt.Errorf("suggestion limit must be positive")
	}

	if c.BehavioralTrustThreshold < 0 || c.BehavioralTrustThreshold > 1 {
		return fmt.Errorf("behavioral trust threshold must be within [0,1]")
	}

	if c.SafetyMessageRate < 1 {
		return fmt.Errorf("safety message rate must be positive")
	}

	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s", c.LogFormat)
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Helper functions

// getEnv gets a string value from environment with a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment with a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat gets a float value from environment with a default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration value from environment with a default
func getEnvDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

// getEnvBool gets a boolean value from environment with a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
