package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attaebra/tuner-ffmpeg/internal/constants"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "", cfg.FFmpeg.Path)
	assert.Equal(t, constants.DefaultBufferSize, cfg.FFmpeg.BuffSize)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, constants.DefaultListenAddr, cfg.Server.Listen)
	assert.Equal(t, constants.DefaultTunerCount, cfg.Server.Tuners)
	assert.Equal(t, constants.DefaultBytesPerRead, cfg.Server.BytesPerRead)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"host level noob", func(c *Config) { c.Logging.Level = "noob" }, false},
		{"host level ssdp", func(c *Config) { c.Logging.Level = "SSDP" }, false},
		{"critical", func(c *Config) { c.Logging.Level = "critical" }, false},
		{"unknown level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"zero tuners", func(c *Config) { c.Server.Tuners = 0 }, true},
		{"zero buffsize", func(c *Config) { c.FFmpeg.BuffSize = 0 }, true},
		{"zero bytes per read", func(c *Config) { c.Server.BytesPerRead = 0 }, true},
		{"empty listen", func(c *Config) { c.Server.Listen = "" }, true},
		{"rate limit disabled", func(c *Config) { c.Server.RateLimit = 0 }, false},
		{"negative rate limit", func(c *Config) { c.Server.RateLimit = -1 }, true},
		{"device id not hex", func(c *Config) { c.Server.DeviceID = "XYZXYZXY" }, true},
		{"device id too short", func(c *Config) { c.Server.DeviceID = "ABCD" }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ffmpeg:
  path: /opt/ffmpeg/bin/ffmpeg
  buffsize: 4096
logging:
  level: debug
`), 0o644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.FFmpeg.Path)
	assert.Equal(t, 4096, cfg.FFmpeg.BuffSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, constants.DefaultListenAddr, cfg.Server.Listen)
}

func TestLoadFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFile(filepath.Join(t.TempDir(), "absent.yaml")))
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ffmpeg: [unterminated"), 0o644))

	assert.Error(t, DefaultConfig().LoadFile(path))
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("FFMPEG_PATH", "/env/ffmpeg")
	t.Setenv("FFMPEG_BUFFSIZE", "2048")
	t.Setenv("LOG_LEVEL", "warning")
	t.Setenv("TUNER_COUNT", "4")
	t.Setenv("TRANSCODE_PROFILES", "/env/transcode.json")
	t.Setenv("DEVICE_ID", "1234ABCD")

	cfg := DefaultConfig()
	cfg.LoadFromEnvironment()

	assert.Equal(t, "/env/ffmpeg", cfg.FFmpeg.Path)
	assert.Equal(t, 2048, cfg.FFmpeg.BuffSize)
	assert.Equal(t, "warning", cfg.Logging.Level)
	assert.Equal(t, 4, cfg.Server.Tuners)
	assert.Equal(t, "/env/transcode.json", cfg.FFmpeg.Profiles)
	assert.Equal(t, "1234ABCD", cfg.Server.DeviceID)
}

func TestLoadFromFlags(t *testing.T) {
	path := "/flag/ffmpeg"
	level := "debug"
	empty := ""
	tuners := 3

	cfg := DefaultConfig()
	cfg.LoadFromFlags(&path, &level, &empty, &tuners)

	assert.Equal(t, path, cfg.FFmpeg.Path)
	assert.Equal(t, level, cfg.Logging.Level)
	assert.Equal(t, constants.DefaultListenAddr, cfg.Server.Listen)
	assert.Equal(t, 3, cfg.Server.Tuners)
}
