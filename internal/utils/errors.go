package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/attaebra/tuner-ffmpeg/internal/logger"
)

// LogAndWrapError logs an error and returns a formatted error with the original wrapped.
func LogAndWrapError(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	wrapped := fmt.Errorf(format+": %w", append(args, err)...)
	logger.Error("%v", wrapped)
	return wrapped
}

// IsClientDisconnect reports whether err means the receiving side went away.
func IsClientDisconnect(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrClosedPipe) || errors.Is(err, os.ErrClosed) {
		return true
	}
	return contains(err.Error(),
		"connection reset by peer",
		"broken pipe",
		"client disconnected",
		"use of closed network connection")
}

// contains checks if a string contains any of the provided substrings.
func contains(s string, substrings ...string) bool {
	for _, substr := range substrings {
		if substr != "" && strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
