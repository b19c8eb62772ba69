package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/npc-dialogue/internal/config"
	"github.com/jwebster45206/npc-dialogue/internal/handlers"
	"github.com/jwebster45206/npc-dialogue/internal/logger"
	"github.com/jwebster45206/npc-dialogue/internal/storage"
	"github.com/jwebster45206/npc-dialogue/pkg/persona"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.RedisURL == "" {
		log.Fatal("REDIS_URL is required: the monitor relays events from Redis pub/sub")
	}

	log := logger.Setup(cfg)

	log.Info("Starting NPC dialogue event monitor",
		"port", cfg.Port,
		"environment", cfg.Environment)

	catalog := persona.Builtin()
	if cfg.PersonaFile != "" {
		catalog, err = persona.LoadFile(cfg.PersonaFile)
		if err != nil {
			log.Error("Failed to load personas", "error", err, "file", cfg.PersonaFile)
			os.Exit(1)
		}
	}

	store := storage.NewRedisStorage(cfg.RedisURL, 0, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx, 30, 2*time.Second); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(store, catalog.Keys(), log))
	mux.Handle("/v1/events/players/", handlers.NewEventsHandler(store.Client(), log))

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: event streams stay open.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
