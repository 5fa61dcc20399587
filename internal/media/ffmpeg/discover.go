package ffmpeg

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/attaebra/tuner-ffmpeg/internal/constants"
	"github.com/attaebra/tuner-ffmpeg/internal/logger"
	"github.com/attaebra/tuner-ffmpeg/internal/utils"
)

// Platform identifies the host operating system the way the host names it.
type Platform string

// Known platforms.
const (
	PlatformLinux   Platform = "Linux"
	PlatformDarwin  Platform = "Darwin"
	PlatformWindows Platform = "Windows"
)

// binaryName returns the executable name searched for on p, or "" if p is unsupported.
func (p Platform) binaryName() string {
	switch p {
	case PlatformLinux, PlatformDarwin:
		return "ffmpeg"
	case PlatformWindows:
		return "ffmpeg.exe"
	}
	return ""
}

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// Locate resolves the ffmpeg binary. A configured path wins if it is an existing
// executable file; otherwise PATH is searched. It returns "" when nothing usable is found.
func Locate(configured string, platform Platform) string {
	if configured != "" {
		err := utils.ValidateExecutable(configured)
		if err == nil {
			return configured
		}
		logger.Warn("Failed to find ffmpeg at %s: %v", configured, err)
	}

	logger.Info("Attempting to find ffmpeg in PATH.")
	name := platform.binaryName()
	if name == "" {
		logger.Warn("Unsupported platform %q for ffmpeg lookup", platform)
		return ""
	}

	found, err := lookPath(name)
	if err != nil {
		logger.Debug("ffmpeg lookup failed: %v", err)
		return ""
	}
	found = strings.TrimSpace(found)
	if found == "" {
		return ""
	}
	return found
}

// ProbeVersion runs "<path> -version" and returns the reported version, or
// constants.VersionMissing if the binary cannot be run or its output is not recognised.
func ProbeVersion(ctx context.Context, path string) string {
	if path == "" {
		return constants.VersionMissing
	}

	ctx, cancel := context.WithTimeout(ctx, constants.ProbeTimeout)
	defer cancel()

	// #nosec G204 -- path was resolved by Locate
	cmd := exec.CommandContext(ctx, path, "-version")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil && stdout.Len() == 0 {
		logger.Warn("ffmpeg version probe failed for %s: %v", path, err)
		return constants.VersionMissing
	}

	version, ok := ParseVersion(stdout.String())
	if !ok {
		logger.Warn("Unrecognised ffmpeg version output from %s", path)
		return constants.VersionMissing
	}
	return version
}

// ParseVersion extracts the token following "version " in ffmpeg's banner.
func ParseVersion(output string) (string, bool) {
	_, rest, found := strings.Cut(output, "version ")
	if !found {
		return "", false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", false
	}
	return fields[0], true
}
