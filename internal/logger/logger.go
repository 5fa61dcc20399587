// Package logger provides leveled, structured logging for the tuner plugin.
// Messages are written as JSON lines through zerolog.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents the various logging levels
type LogLevel int

const (
	// LevelCritical only logs critical failures
	LevelCritical LogLevel = iota
	// LevelError logs errors and critical failures
	LevelError
	// LevelWarn logs warnings and errors
	LevelWarn
	// LevelInfo logs info, warnings, and errors
	LevelInfo
	// LevelDebug logs everything
	LevelDebug
)

var (
	mu           sync.RWMutex
	currentLevel = LevelInfo
	base         zerolog.Logger
)

func init() {
	base = newBase(os.Stdout)
}

func newBase(w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(w).With().
		Timestamp().
		Str("service", "tuner-ffmpeg").
		Logger().
		Level(zerologLevel(currentLevel))
}

// SetOutput redirects all log output to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	base = newBase(w)
}

// SetLevel sets the current logging level
func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = level
	base = base.Level(zerologLevel(level))
}

// GetLevel returns the current logging level
func GetLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return currentLevel
}

// LevelFromString converts a host log level name to a LogLevel.
// The host's own names are accepted: "noob" logs like info, "ssdp" like debug.
func LevelFromString(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "critical", "fatal":
		return LevelCritical
	case "error":
		return LevelError
	case "warn", "warning":
		return LevelWarn
	case "info", "noob":
		return LevelInfo
	case "debug", "ssdp":
		return LevelDebug
	default:
		return LevelInfo
	}
}

func zerologLevel(l LogLevel) zerolog.Level {
	switch l {
	case LevelCritical:
		return zerolog.FatalLevel
	case LevelError:
		return zerolog.ErrorLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelDebug:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

func current() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// WithComponent returns a child logger annotated with the given component name.
func WithComponent(component string) zerolog.Logger {
	return current().With().Str("component", component).Logger()
}

// Debug logs a debug message
func Debug(format string, v ...interface{}) {
	l := current()
	l.Debug().Msgf(format, v...)
}

// Info logs an info message
func Info(format string, v ...interface{}) {
	l := current()
	l.Info().Msgf(format, v...)
}

// Warn logs a warning message
func Warn(format string, v ...interface{}) {
	l := current()
	l.Warn().Msgf(format, v...)
}

// Error logs an error message
func Error(format string, v ...interface{}) {
	l := current()
	l.Error().Msgf(format, v...)
}

// Fatal logs a fatal error message and exits
func Fatal(format string, v ...interface{}) {
	l := current()
	l.WithLevel(zerolog.FatalLevel).Msgf(format, v...)
	os.Exit(1)
}

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case LevelCritical:
		return "critical"
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	default:
		return fmt.Sprintf("LogLevel(%d)", l)
	}
}
