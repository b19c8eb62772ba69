package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jwebster45206/npc-dialogue/pkg/textchunk"
)

type Config struct {
	Environment string
	LogLevel    slog.Level
	// LogFile receives logs from the terminal host.
	LogFile string

	// RedisURL is host:port. Empty keeps variables in memory.
	RedisURL string
	// PersonaFile is a YAML catalog. Empty uses the built-in personas.
	PersonaFile string

	BackendBaseURL string
	BackendTimeout time.Duration
	ChunkSize      int

	PlayerID      string
	EventsEnabled bool

	// Port is where the event monitor listens.
	Port string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var errs []error

	timeout, err := time.ParseDuration(getEnv("BACKEND_TIMEOUT", "30s"))
	if err != nil || timeout <= 0 {
		errs = append(errs, fmt.Errorf("BACKEND_TIMEOUT must be a positive duration, got %q", os.Getenv("BACKEND_TIMEOUT")))
	}

	chunkSize, err := strconv.Atoi(getEnv("CHUNK_SIZE", strconv.Itoa(textchunk.DefaultMaxLength)))
	if err != nil || chunkSize <= 0 {
		errs = append(errs, fmt.Errorf("CHUNK_SIZE must be a positive integer, got %q", os.Getenv("CHUNK_SIZE")))
	}

	eventsEnabled, err := strconv.ParseBool(getEnv("EVENTS_ENABLED", "false"))
	if err != nil {
		errs = append(errs, fmt.Errorf("EVENTS_ENABLED must be a boolean, got %q", os.Getenv("EVENTS_ENABLED")))
	}

	cfg := &Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LogFile:        getEnv("LOG_FILE", "npc-dialogue.log"),
		RedisURL:       getEnv("REDIS_URL", ""),
		PersonaFile:    getEnv("PERSONA_FILE", ""),
		BackendBaseURL: getEnv("BACKEND_BASE_URL", ""),
		BackendTimeout: timeout,
		ChunkSize:      chunkSize,
		PlayerID:       getEnv("PLAYER_ID", "player-1"),
		EventsEnabled:  eventsEnabled,
		Port:           getEnv("PORT", "8080"),
	}

	if cfg.EventsEnabled && cfg.RedisURL == "" {
		errs = append(errs, errors.New("EVENTS_ENABLED requires REDIS_URL"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
