package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/dialogue-engine/internal/config"
	"github.com/jwebster45206/dialogue-engine/internal/handlers"
	"github.com/jwebster45206/dialogue-engine/internal/logger"
	"github.com/jwebster45206/dialogue-engine/internal/storage"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg, os.Stdout)

	log.Info("Starting Dialogue Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir,
		"redis", cfg.RedisURL != "")

	var st *storage.RedisStorage
	if cfg.RedisURL == "" {
		st = storage.NewFileStorage(cfg.DataDir, log)
		log.Warn("REDIS_URL not set; dialogue uploads and event streams are disabled")
	} else {
		var err error
		st, err = storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
		if err != nil {
			log.Error("Failed to create storage", "error", err)
			os.Exit(1)
		}

		storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer storageCancel()
		if err := st.WaitForConnection(storageCtx, 10, 2*time.Second); err != nil {
			log.Error("Failed to connect to storage", "error", err)
			os.Exit(1)
		}
		log.Info("Storage connection established successfully")
	}

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handlers.NewRouter(st, st.Client(), log),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: event streams stay open
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	if err := st.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
