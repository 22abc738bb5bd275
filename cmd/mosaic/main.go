// Mosaic aggregator server — fans images out to ML analyzer endpoints and
// serves the emoji consensus API.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/emojivision/mosaic/pkg/analyzer"
	"github.com/emojivision/mosaic/pkg/api"
	"github.com/emojivision/mosaic/pkg/config"
	"github.com/emojivision/mosaic/pkg/ingest"
	"github.com/emojivision/mosaic/pkg/pipeline"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	// Load .env file from config directory
	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment",
			"path", envPath, "error", err)
	} else {
		slog.Info("Loaded environment", "path", envPath)
	}

	ctx := context.Background()

	// 1. Initialize configuration
	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}

	// 2. Prepare the upload directory
	store := ingest.NewStore(&cfg.Server)
	if err := store.EnsureDir(); err != nil {
		slog.Error("Failed to create upload directory",
			"dir", cfg.Server.UploadDir, "error", err)
		os.Exit(1)
	}

	// 3. Start the upload-retention janitor (background goroutine)
	janitor := ingest.NewJanitor(&cfg.Server)
	janitor.Start(ctx)
	defer janitor.Stop()

	// 4. Start the analyzer health monitor (background goroutine)
	healthMonitor := analyzer.NewHealthMonitor(cfg.Analyzers)
	healthMonitor.Start(ctx)
	defer healthMonitor.Stop()
	slog.Info("Analyzer health monitor started", "analyzers", cfg.Analyzers.Len())

	// 5. Build the analysis pipeline
	p := pipeline.New(cfg)

	// 6. Create and start the HTTP server (non-blocking)
	httpServer := api.NewServer(cfg, p, store, healthMonitor)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + strconv.Itoa(cfg.Server.Port)
		slog.Info("HTTP server listening", "addr", addr)
		if err := httpServer.Start(addr); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	slog.Info("Mosaic started successfully",
		"port", cfg.Server.Port,
		"analyzers", cfg.Analyzers.Len())

	// 7. Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// 8. Graceful shutdown: stop accepting requests, let in-flight analysis
	// finish within the drain budget.
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.RequestBudget()+5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
