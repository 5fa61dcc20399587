// Package container wires the tuner host's components together.
package container

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/attaebra/tuner-ffmpeg/internal/config"
	"github.com/attaebra/tuner-ffmpeg/internal/logger"
	"github.com/attaebra/tuner-ffmpeg/internal/media/buffer"
	"github.com/attaebra/tuner-ffmpeg/internal/media/transcoder"
	"github.com/attaebra/tuner-ffmpeg/internal/server"
	"github.com/attaebra/tuner-ffmpeg/internal/tuner"
	"github.com/attaebra/tuner-ffmpeg/internal/versions"
)

// Container holds all application dependencies.
type Container struct {
	store    *config.Store
	versions *versions.Registry
	pool     *tuner.Pool
	buffers  *buffer.Manager

	transcoderDeps *transcoder.Dependencies
	httpServer     *http.Server
}

// New creates a container from a validated configuration. configPath is where
// discovered settings are persisted; empty disables persistence. ffmpeg
// discovery runs here, once.
func New(ctx context.Context, cfg *config.Config, configPath string) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	c := &Container{
		store:    config.NewStore(cfg, configPath),
		versions: versions.New(),
		pool:     tuner.NewPool(cfg.Server.Tuners),
		buffers:  buffer.NewManager(buffer.DefaultTailSize),
	}

	c.initializeVersions(ctx)
	c.initializeTranscoder()
	c.initializeServer()

	return c, nil
}

// initializeVersions records the platform and locates ffmpeg.
func (c *Container) initializeVersions(ctx context.Context) {
	c.versions.RegisterPlatform()
	c.versions.Register("Go", runtime.Version(), "env")
	transcoder.Setup(ctx, c.store, c.versions)
}

// initializeTranscoder creates the dependencies shared by every stream.
func (c *Container) initializeTranscoder() {
	c.transcoderDeps = &transcoder.Dependencies{
		Config:   c.store,
		Versions: c.versions,
		Buffers:  c.buffers,
	}
	logger.Debug("Initialized transcoder dependencies")
}

// initializeServer creates the HTTP server.
func (c *Container) initializeServer() {
	cfg := c.store.Snapshot()

	srv := server.New(server.Options{
		Pool:         c.pool,
		Versions:     c.versions,
		Transcoder:   c.transcoderDeps,
		BytesPerRead: cfg.Server.BytesPerRead,
		RateLimit:    cfg.Server.RateLimit,
		DeviceID:     cfg.Server.DeviceID,
	})

	c.httpServer = &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      0, // No write timeout for streaming
		IdleTimeout:       120 * time.Second,
	}

	logger.Debug("Initialized server on %s with %d tuners", cfg.Server.Listen, cfg.Server.Tuners)
}

// GetServer returns the HTTP server.
func (c *Container) GetServer() *http.Server {
	return c.httpServer
}

// GetVersions returns the version registry.
func (c *Container) GetVersions() *versions.Registry {
	return c.versions
}

// GetPool returns the tuner pool.
func (c *Container) GetPool() *tuner.Pool {
	return c.pool
}

// GetConfig returns a copy of the current configuration.
func (c *Container) GetConfig() config.Config {
	return c.store.Snapshot()
}

// Shutdown releases every tuner, which ends running streams at their next
// chunk, then stops the HTTP server.
func (c *Container) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down container...")

	c.pool.ReleaseAll()

	if err := c.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shut down server: %w", err)
	}

	logger.Info("Container shutdown complete")
	return nil
}
