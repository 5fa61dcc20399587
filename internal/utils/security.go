// Package utils provides utility functions shared across the application.
package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/attaebra/tuner-ffmpeg/internal/logger"
)

// Common errors.
var (
	ErrPathEmpty         = errors.New("path is empty")
	ErrPathNotFound      = errors.New("path not found")
	ErrPathNotExecutable = errors.New("path is not executable")
)

// ValidateExecutable checks that path names an existing, executable regular file.
func ValidateExecutable(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrPathEmpty
	}

	cleanPath := filepath.Clean(path)
	logger.Debug("Validating executable path: %s", cleanPath)

	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrPathNotFound, cleanPath)
		}
		return fmt.Errorf("error checking path: %w", err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrPathNotExecutable, cleanPath)
	}

	// Windows has no execute bit; the version probe decides there.
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return fmt.Errorf("%w: no execute permission on %s", ErrPathNotExecutable, cleanPath)
	}

	return nil
}
