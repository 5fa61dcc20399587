// Package main runs the tuner host: emulated tuners that stream through ffmpeg.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/attaebra/tuner-ffmpeg/internal/config"
	"github.com/attaebra/tuner-ffmpeg/internal/container"
	"github.com/attaebra/tuner-ffmpeg/internal/logger"
)

func main() {
	// Parse command line arguments.
	configPath := flag.String("config", "config.yaml", "Path to the YAML configuration file")
	ffmpegPath := flag.String("ffmpeg", "", "Path to the ffmpeg binary (default: search PATH)")
	logLevel := flag.String("log-level", "", "Logging level: critical, error, warning, info, debug")
	listen := flag.String("listen", "", "Address for the HTTP server")
	tuners := flag.Int("tuners", 0, "Number of emulated tuners")
	flag.Parse()

	// Create configuration with defaults
	cfg := config.DefaultConfig()

	if err := cfg.LoadFile(*configPath); err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}

	// Load configuration from command line flags
	cfg.LoadFromFlags(ffmpegPath, logLevel, listen, tuners)

	// Load configuration from environment variables
	cfg.LoadFromEnvironment()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Configuration validation failed: %v", err)
	}

	// Set the logging level.
	logger.SetLevel(logger.LevelFromString(cfg.Logging.Level))
	logger.Info("Log level set to %s", cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize dependency injection container
	c, err := container.New(ctx, cfg, persistPath(*configPath))
	if err != nil {
		logger.Fatal("Failed to initialize container: %v", err)
	}

	current := c.GetConfig()
	logger.Info("Configuration loaded:")
	logger.Info("  Listen: %s", current.Server.Listen)
	logger.Info("  Tuners: %d", current.Server.Tuners)
	logger.Info("  FFmpeg Path: %s", current.FFmpeg.Path)

	srv := c.GetServer()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return c.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error: %v", err)
		os.Exit(1)
	}

	logger.Info("Bye!")
}

// persistPath returns where discovered settings are written back. The default
// config file is only updated if it already exists; an explicit -config is
// always used.
func persistPath(path string) string {
	explicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})
	if explicit {
		return path
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
