package transcoder

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/attaebra/tuner-ffmpeg/internal/constants"
	"github.com/attaebra/tuner-ffmpeg/internal/logger"
	"github.com/attaebra/tuner-ffmpeg/internal/media/buffer"
	"github.com/attaebra/tuner-ffmpeg/internal/media/ffmpeg"
	"github.com/attaebra/tuner-ffmpeg/internal/versions"
)

type fakeConfig struct {
	mu     sync.Mutex
	values map[string]string
	ints   map[string]int
	sets   map[string]string
	setErr error
}

func newFakeConfig() *fakeConfig {
	return &fakeConfig{
		values: map[string]string{constants.KeyLoggingLevel: "error"},
		ints:   map[string]int{constants.KeyFFmpegBuffSize: 4096},
		sets:   map[string]string{},
	}
}

func (c *fakeConfig) GetString(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key]
}

func (c *fakeConfig) GetInt(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ints[key]
}

func (c *fakeConfig) SetString(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.values[key] = value
	c.sets[key] = value
	return nil
}

type fakeLock struct {
	held atomic.Bool
}

func newHeldLock() *fakeLock {
	l := &fakeLock{}
	l.held.Store(true)
	return l
}

func (l *fakeLock) IsHeld() bool { return l.held.Load() }

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake ffmpeg is a shell script")
	}
}

func writeFakeFFmpeg(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

type harness struct {
	cfg      *fakeConfig
	versions *versions.Registry
	lock     *fakeLock
	deps     *Dependencies
	dir      string
}

// newHarness installs a fake ffmpeg running body and points the profiles path
// at a file that does not exist.
func newHarness(t *testing.T, body string) *harness {
	t.Helper()
	skipWithoutShell(t)

	dir := t.TempDir()
	cfg := newFakeConfig()
	cfg.values[constants.KeyFFmpegPath] = writeFakeFFmpeg(t, dir, body)
	cfg.values[constants.KeyFFmpegProfiles] = filepath.Join(dir, "transcode.json")

	reg := versions.New()
	reg.Register(constants.TranscoderName, "6.1", constants.VersionKindEnv)

	return &harness{
		cfg:      cfg,
		versions: reg,
		lock:     newHeldLock(),
		dir:      dir,
		deps: &Dependencies{
			Config:   cfg,
			Versions: reg,
			Buffers:  buffer.NewManager(1024),
			Grace:    2 * time.Second,
		},
	}
}

func (h *harness) writeProfiles(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(h.cfg.values[constants.KeyFFmpegProfiles], []byte(content), 0o644))
}

func request(quality string, bytesPerRead int) *ffmpeg.StreamRequest {
	return &ffmpeg.StreamRequest{
		StreamInfo:       ffmpeg.StreamInfo{URL: "http://upstream/ch1"},
		TranscodeQuality: quality,
		BytesPerRead:     bytesPerRead,
	}
}

func (h *harness) start(t *testing.T, req *ffmpeg.StreamRequest) *Stream {
	t.Helper()
	a, err := New(h.deps, req, h.lock)
	require.NoError(t, err)
	s, err := a.Get(t.Context())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func collect(t *testing.T, s *Stream) ([]string, error) {
	t.Helper()
	var chunks []string
	for chunk, err := range s.Chunks() {
		if err != nil {
			return chunks, err
		}
		chunks = append(chunks, string(chunk))
	}
	return chunks, nil
}

func requireReaped(t *testing.T, s *Stream) {
	t.Helper()
	require.NotNil(t, s.proc.cmd.ProcessState, fmt.Sprintf("ffmpeg pid %d was not reaped", s.Pid()))
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// captureLogs redirects info-level log output for the rest of the test.
func captureLogs(t *testing.T) *lockedBuffer {
	t.Helper()
	out := &lockedBuffer{}
	level := logger.GetLevel()
	logger.SetOutput(out)
	logger.SetLevel(logger.LevelInfo)
	t.Cleanup(func() {
		logger.SetOutput(os.Stdout)
		logger.SetLevel(level)
	})
	return out
}
