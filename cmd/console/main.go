package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/npc-dialogue/internal/config"
	"github.com/jwebster45206/npc-dialogue/internal/dialogue"
	"github.com/jwebster45206/npc-dialogue/internal/logger"
	"github.com/jwebster45206/npc-dialogue/internal/observe"
	"github.com/jwebster45206/npc-dialogue/internal/services"
	"github.com/jwebster45206/npc-dialogue/internal/services/events"
	redisstore "github.com/jwebster45206/npc-dialogue/internal/storage"
	"github.com/jwebster45206/npc-dialogue/pkg/persona"
	"github.com/jwebster45206/npc-dialogue/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logFile.Close() // Ignore error in defer
	}()
	log := logger.SetupWriter(cfg, logFile)

	catalog, err := loadCatalog(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load personas: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, publisher, err := setupStorage(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to storage: %v\nTry: docker-compose up -d redis\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = store.Close() // Ignore error in defer
	}()

	opts := dialogue.Options{
		Logger:    log,
		Metrics:   observe.DefaultMetrics(),
		ChunkSize: cfg.ChunkSize,
		BaseURL:   cfg.BackendBaseURL,
	}
	if publisher != nil {
		opts.Publisher = publisher
	}
	engine := dialogue.New(services.NewHTTPChatService(cfg.BackendTimeout), opts)

	var program *tea.Program
	h := newConsoleHost(cfg.PlayerID, storage.ForPlayer(store, cfg.PlayerID), func(msg any) {
		program.Send(msg)
	})
	program = tea.NewProgram(NewConsoleUI(ctx, engine, h, catalog),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())

	log.Info("Console started", "player_id", cfg.PlayerID, "personas", len(catalog.Personas))
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func loadCatalog(cfg *config.Config) (*persona.Catalog, error) {
	if cfg.PersonaFile == "" {
		return persona.Builtin(), nil
	}
	return persona.LoadFile(cfg.PersonaFile)
}

// setupStorage picks Redis when configured and an in-memory store otherwise.
// The broadcaster is only returned when events are enabled.
func setupStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.VariableStore, *events.Broadcaster, error) {
	if cfg.RedisURL == "" {
		log.Info("REDIS_URL not set, keeping variables in memory")
		return storage.NewMockStorage(), nil, nil
	}

	rs := redisstore.NewRedisStorage(cfg.RedisURL, 0, log)
	waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := rs.WaitForConnection(waitCtx, 10, time.Second); err != nil {
		_ = rs.Close()
		return nil, nil, err
	}

	if !cfg.EventsEnabled {
		return rs, nil, nil
	}
	return rs, events.NewBroadcaster(rs.Client(), log), nil
}
