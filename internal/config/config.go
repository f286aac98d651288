package config

import (
	"os"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	Environment string

	// DatabaseURL is a Postgres DSN.  When empty the server runs with
	// in-memory stores, which is the mode used by tests and local demos.
	DatabaseURL string

	// KnowledgeBasePath points at a JSON knowledge base file.  When empty
	// the embedded default entries are used.
	KnowledgeBasePath string

	// RequestTimeout bounds classification, dispatch and filtering for a
	// single message.
	RequestTimeout time.Duration

	// SessionIdleTTL is how long a conversation may sit idle before the
	// reaper marks it closed.
	SessionIdleTTL time.Duration

	// NotifyChannel is the Postgres channel ticket-created events are
	// published on.  Only used with a database-backed ticket store.
	NotifyChannel string
}

// Load loads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		KnowledgeBasePath: getEnv("KNOWLEDGE_BASE_PATH", ""),
		RequestTimeout:    getDurationEnv("REQUEST_TIMEOUT", 10*time.Second),
		SessionIdleTTL:    getDurationEnv("SESSION_IDLE_TTL", 30*time.Minute),
		NotifyChannel:     getEnv("TICKET_NOTIFY_CHANNEL", "ticket_created"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
