package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/htnguyen/novel-engine/internal/config"
	"github.com/htnguyen/novel-engine/internal/handlers"
	"github.com/htnguyen/novel-engine/internal/logger"
	"github.com/htnguyen/novel-engine/internal/storage"
	"github.com/htnguyen/novel-engine/pkg/story"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	slogger := logger.Setup(cfg)

	slogger.Info("Starting Novel Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"story", cfg.StoryFile)

	storyPath := filepath.Join(cfg.DataDir, "stories", cfg.StoryFile)
	st, err := story.LoadFile(storyPath)
	if err != nil {
		slogger.Error("Failed to load story content", "path", storyPath, "error", err)
		os.Exit(1)
	}
	registry := story.NewRegistry(st, slogger)
	slogger.Info("Story content loaded",
		"name", st.Name,
		"nodes", len(st.Nodes),
		"endings", len(st.Endings),
		"max_day", st.MaxDay)

	store, err := storage.NewRedisStore(cfg.RedisURL, registry.MaxDay(), slogger)
	if err != nil {
		slogger.Error("Failed to configure save store", "error", err)
		os.Exit(1)
	}

	storeCtx, storeCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storeCancel()
	if err := store.WaitForConnection(storeCtx); err != nil {
		slogger.Error("Failed to connect to save store", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(store, slogger))

	gamesHandler := handlers.NewGamesHandler(registry, store, slogger)
	mux.Handle("/v1/games", gamesHandler)
	mux.Handle("/v1/games/", gamesHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slogger.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slogger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slogger.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		slogger.Error("Error closing save store", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slogger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slogger.Info("Server exited")
}
