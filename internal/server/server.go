// Package server exposes the emulated tuners over HTTP: a stream endpoint that
// runs the transcoder adapter, tuner control, status and metrics.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/attaebra/tuner-ffmpeg/internal/media/stream"
	"github.com/attaebra/tuner-ffmpeg/internal/media/transcoder"
	"github.com/attaebra/tuner-ffmpeg/internal/tuner"
	"github.com/attaebra/tuner-ffmpeg/internal/versions"
)

// Options configures a Server.
type Options struct {
	Pool       *tuner.Pool
	Versions   *versions.Registry
	Transcoder *transcoder.Dependencies

	// BytesPerRead is the chunk size requested for every stream.
	BytesPerRead int
	// RateLimit is the number of stream requests allowed per minute per client IP. Zero disables it.
	RateLimit int
	DeviceID  string
}

// Server serves the tuner HTTP API.
type Server struct {
	opts    Options
	helper  *stream.Helper
	started time.Time
}

// New creates a server.
func New(opts Options) *Server {
	return &Server{
		opts:    opts,
		helper:  stream.NewHelper(),
		started: time.Now(),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		if s.opts.RateLimit > 0 {
			r.Use(rateLimit(s.opts.RateLimit, time.Minute))
		}
		r.Get("/stream", s.handleStream)
	})

	r.Delete("/tuners/{number}", s.handleReleaseTuner)
	r.Get("/status", s.handleStatus)
	r.Get("/versions", s.handleVersions)
	r.Get("/discover.json", s.handleDiscover)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
