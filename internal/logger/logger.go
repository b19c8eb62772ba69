package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/jwebster45206/npc-dialogue/internal/config"
)

// Setup configures the global slog logger based on environment
func Setup(cfg *config.Config) *slog.Logger {
	return SetupWriter(cfg, os.Stdout)
}

// SetupWriter is Setup with an explicit destination. The terminal host
// logs to a file so output does not tear the UI.
func SetupWriter(cfg *config.Config, w io.Writer) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	if cfg.Environment == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// WithPlayer adds player and persona to logger context
func WithPlayer(logger *slog.Logger, playerID, persona string) *slog.Logger {
	return logger.With("player_id", playerID, "persona", persona)
}

// WithTurn adds a turn ID to logger context
func WithTurn(logger *slog.Logger, turnID string) *slog.Logger {
	return logger.With("turn_id", turnID)
}

// WithError adds error to logger context
func WithError(logger *slog.Logger, err error) *slog.Logger {
	return logger.With("error", err.Error())
}
