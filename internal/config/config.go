// Package config provides centralized configuration management for the tuner plugin.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/attaebra/tuner-ffmpeg/internal/constants"
)

// Config holds the application configuration.
type Config struct {
	FFmpeg  FFmpegConfig  `yaml:"ffmpeg"`
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
}

// FFmpegConfig configures the transcoder.
type FFmpegConfig struct {
	// Path to the ffmpeg binary. Empty means search PATH.
	Path string `yaml:"path"`
	// BuffSize is the size of the buffered reader on the transcoder's stdout.
	BuffSize int `yaml:"buffsize" validate:"gt=0"`
	// Profiles is the transcode profile file. Empty means transcode.json beside the executable.
	Profiles string `yaml:"profiles"`
}

// LoggingConfig configures logging for both the host and the transcoder.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"required,oneof=debug info warning warn error critical noob ssdp"`
}

// ServerConfig configures the emulated tuner host.
type ServerConfig struct {
	Listen       string `yaml:"listen" validate:"required"`
	Tuners       int    `yaml:"tuners" validate:"min=1"`
	BytesPerRead int    `yaml:"bytes_per_read" validate:"gt=0"`
	// RateLimit caps stream requests per minute per client IP. Zero disables it.
	RateLimit int    `yaml:"rate_limit" validate:"gte=0"`
	DeviceID  string `yaml:"device_id" validate:"required,hexadecimal,len=8"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		FFmpeg: FFmpegConfig{
			BuffSize: constants.DefaultBufferSize,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Listen:       constants.DefaultListenAddr,
			Tuners:       constants.DefaultTunerCount,
			BytesPerRead: constants.DefaultBytesPerRead,
			RateLimit:    constants.DefaultStreamRateLimit,
			DeviceID:     constants.DefaultDeviceID,
		},
	}
}

// LoadFile merges the YAML file at path into c. A missing file is not an error.
func (c *Config) LoadFile(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// LoadFromEnvironment loads configuration from environment variables.
func (c *Config) LoadFromEnvironment() {
	if ffmpegPath := os.Getenv("FFMPEG_PATH"); ffmpegPath != "" {
		c.FFmpeg.Path = ffmpegPath
	}

	if buffSize := os.Getenv("FFMPEG_BUFFSIZE"); buffSize != "" {
		if n, err := strconv.Atoi(buffSize); err == nil {
			c.FFmpeg.BuffSize = n
		}
	}

	if profiles := os.Getenv("TRANSCODE_PROFILES"); profiles != "" {
		c.FFmpeg.Profiles = profiles
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if listen := os.Getenv("LISTEN_ADDR"); listen != "" {
		c.Server.Listen = listen
	}

	if tuners := os.Getenv("TUNER_COUNT"); tuners != "" {
		if n, err := strconv.Atoi(tuners); err == nil {
			c.Server.Tuners = n
		}
	}

	if deviceID := os.Getenv("DEVICE_ID"); deviceID != "" {
		c.Server.DeviceID = deviceID
	}
}

// LoadFromFlags loads configuration from command line flags.
func (c *Config) LoadFromFlags(ffmpegPath *string, logLevel *string, listen *string, tuners *int) {
	if ffmpegPath != nil && *ffmpegPath != "" {
		c.FFmpeg.Path = *ffmpegPath
	}

	if logLevel != nil && *logLevel != "" {
		c.Logging.Level = *logLevel
	}

	if listen != nil && *listen != "" {
		c.Server.Listen = *listen
	}

	if tuners != nil && *tuners > 0 {
		c.Server.Tuners = *tuners
	}
}

// Validate ensures the configuration is valid.
func (c *Config) Validate() error {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("invalid %s: %v fails %q", e.Namespace(), e.Value(), e.Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
