package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	// Batch formation and retry ceilings are dispatcher configuration.
	// Handlers honor them but never compute them.
	OrderBatchMaxSize   int
	OrderBatchMaxWait   time.Duration
	OrderMaxAttempts    int
	UserSyncMaxAttempts int

	EnableUserSyncConsumer bool
	EnableOrderConsumer    bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "quickcart"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		OrderBatchMaxSize:   envInt("ORDER_BATCH_MAX_SIZE", 5),
		OrderBatchMaxWait:   envDuration("ORDER_BATCH_MAX_WAIT", 5*time.Second),
		OrderMaxAttempts:    envInt("ORDER_MAX_ATTEMPTS", 3),
		UserSyncMaxAttempts: envInt("USER_SYNC_MAX_ATTEMPTS", 3),

		EnableUserSyncConsumer: envBool("ENABLE_USER_SYNC_CONSUMER", true),
		EnableOrderConsumer:    envBool("ENABLE_ORDER_CONSUMER", true),
	}, nil
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
