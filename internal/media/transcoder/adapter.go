// Package transcoder runs ffmpeg for one stream request and exposes its output
// as a sequence of byte chunks for as long as the owning tuner stays locked.
package transcoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/attaebra/tuner-ffmpeg/internal/constants"
	"github.com/attaebra/tuner-ffmpeg/internal/interfaces"
	"github.com/attaebra/tuner-ffmpeg/internal/logger"
	"github.com/attaebra/tuner-ffmpeg/internal/media/buffer"
	"github.com/attaebra/tuner-ffmpeg/internal/media/ffmpeg"
	"github.com/attaebra/tuner-ffmpeg/internal/metrics"
	"github.com/attaebra/tuner-ffmpeg/internal/tuner"
	"github.com/attaebra/tuner-ffmpeg/internal/utils"
)

// Dependencies holds everything an Adapter needs from the host.
type Dependencies struct {
	Config   interfaces.ConfigSource
	Versions interfaces.VersionRegistry
	Buffers  *buffer.Manager

	// Stderr receives ffmpeg's stderr when the logging level shows it. Defaults to os.Stderr.
	Stderr io.Writer

	// Grace is the time between SIGTERM and SIGKILL. Defaults to constants.TerminateGrace.
	Grace time.Duration
}

// Adapter turns one stream request into one ffmpeg process.
type Adapter struct {
	deps *Dependencies
	req  *ffmpeg.StreamRequest
	lock interfaces.LockSource
}

// New creates an adapter for req. deps may be shared between adapters. It fails with tuner.ErrTranscoderMissing when
// setup recorded no usable ffmpeg.
func New(deps *Dependencies, req *ffmpeg.StreamRequest, lock interfaces.LockSource) (*Adapter, error) {
	if deps.Versions.Version(constants.TranscoderName) == constants.VersionMissing {
		logger.Error("ffmpeg is missing, refusing stream for %s", req.StreamInfo.URL)
		return nil, tuner.ErrTranscoderMissing
	}
	d := *deps
	if d.Buffers == nil {
		d.Buffers = buffer.NewManager(buffer.DefaultTailSize)
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
	if d.Grace <= 0 {
		d.Grace = constants.TerminateGrace
	}
	return &Adapter{deps: &d, req: req, lock: lock}, nil
}

// Get loads the profile table, launches ffmpeg and returns its output stream.
// The caller must drain or Close the stream.
func (a *Adapter) Get(ctx context.Context) (*Stream, error) {
	table := a.profiles()

	requested := a.req.TranscodeQuality
	level := a.deps.Config.GetString(constants.KeyLoggingLevel)
	args := ffmpeg.AssembleCommand(a.req, table, a.deps.Config.GetString(constants.KeyFFmpegPath), level)
	if requested != "" && a.req.TranscodeQuality != requested {
		metrics.IncProfileFallback("unknown_quality")
	}
	logger.Debug("ffmpeg command: %v", args)

	bytesPerRead := a.req.BytesPerRead
	if bytesPerRead <= 0 {
		bytesPerRead = constants.DefaultBytesPerRead
	}
	buffSize := a.deps.Config.GetInt(constants.KeyFFmpegBuffSize)
	if buffSize <= 0 {
		buffSize = constants.DefaultBufferSize
	}

	tail := a.deps.Buffers.NewTail()
	var stderr io.Writer = tail
	if ffmpeg.StderrVisible(level) {
		stderr = io.MultiWriter(a.deps.Stderr, tail)
	}

	proc, err := startProcess(args, stderr, a.deps.Grace)
	if err != nil {
		metrics.IncStart(false)
		return nil, utils.LogAndWrapError(fmt.Errorf("%w: %w", ErrTranscoderFailed, err), "start ffmpeg for %s", a.req.StreamInfo.URL)
	}
	metrics.IncStart(true)
	logger.Info("Started ffmpeg (pid %d) for %s with %s profile", proc.cmd.Process.Pid, a.req.StreamInfo.URL, a.req.TranscodeQuality)

	return newStream(ctx, streamConfig{
		proc:         proc,
		lock:         a.lock,
		buffers:      a.deps.Buffers,
		tail:         tail,
		bytesPerRead: bytesPerRead,
		bufferSize:   buffSize,
		grace:        a.deps.Grace,
	}), nil
}

// profiles loads the profile table, falling back to the built-in default. On
// fallback the request quality is cleared so command assembly picks the default.
func (a *Adapter) profiles() ffmpeg.ProfileTable {
	path := a.profilesPath()
	table, err := ffmpeg.LoadProfiles(path)
	if err == nil {
		return table
	}

	if errors.Is(err, ffmpeg.ErrProfilesNotFound) {
		logger.Debug("No transcode profiles at %s, using default", path)
		metrics.IncProfileFallback("missing_file")
	} else {
		logger.Warn("Failed to load transcode profiles, using default: %v", err)
		metrics.IncProfileFallback("invalid_file")
	}
	a.req.TranscodeQuality = ""
	return ffmpeg.DefaultProfiles()
}

func (a *Adapter) profilesPath() string {
	if path := a.deps.Config.GetString(constants.KeyFFmpegProfiles); path != "" {
		return path
	}
	exe, err := os.Executable()
	if err != nil {
		return constants.ProfilesFileName
	}
	return filepath.Join(filepath.Dir(exe), constants.ProfilesFileName)
}
