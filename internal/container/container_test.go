package container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/attaebra/tuner-ffmpeg/internal/config"
	"github.com/attaebra/tuner-ffmpeg/internal/constants"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.Tuners = 0

	_, err := New(context.Background(), cfg, "")
	assert.Error(t, err)
}

func TestNewDiscoversAndPersistsFFmpeg(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("fake ffmpeg is a shell script")
	}
	binDir := t.TempDir()
	script := filepath.Join(binDir, "ffmpeg")
	require.NoError(t, os.WriteFile(script,
		[]byte("#!/bin/sh\necho 'ffmpeg version 6.0-static https://johnvansickle.com/ffmpeg/'\n"), 0o755))
	t.Setenv("PATH", binDir)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg := config.DefaultConfig()
	cfg.Server.Tuners = 3

	c, err := New(context.Background(), cfg, configPath)
	require.NoError(t, err)

	assert.Equal(t, "6.0-static", c.GetVersions().Version(constants.TranscoderName))
	assert.Equal(t, "Linux", c.GetVersions().Version(constants.OperatingSystemKey))
	assert.Equal(t, script, c.GetConfig().FFmpeg.Path)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	var saved config.Config
	require.NoError(t, yaml.Unmarshal(data, &saved))
	assert.Equal(t, script, saved.FFmpeg.Path)

	rec := httptest.NewRecorder()
	c.GetServer().Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Active Streams: 0/3")
}

func TestShutdownReleasesTuners(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	c, err := New(context.Background(), config.DefaultConfig(), "")
	require.NoError(t, err)
	assert.Equal(t, constants.VersionMissing, c.GetVersions().Version(constants.TranscoderName))

	tn, err := c.GetPool().Acquire("s", "http://u")
	require.NoError(t, err)

	require.NoError(t, c.Shutdown(context.Background()))
	assert.False(t, tn.IsHeld())
}
