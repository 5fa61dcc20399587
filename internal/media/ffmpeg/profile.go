// Package ffmpeg builds ffmpeg invocations for tuner streams and discovers the ffmpeg binary.
package ffmpeg

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/attaebra/tuner-ffmpeg/internal/constants"
)

// Profile is a named set of ffmpeg arguments, in the order they are placed on the command line.
type Profile struct {
	Global []string `json:"global"`
	Input  []string `json:"input"`
	Output []string `json:"output"`
}

// ProfileTable maps a transcode quality name to its profile.
type ProfileTable map[string]Profile

// DefaultProfiles is used when no profile file exists: repackage to MPEG-TS without re-encoding.
func DefaultProfiles() ProfileTable {
	return ProfileTable{
		constants.DefaultQuality: {
			Global: []string{},
			Input:  []string{},
			Output: []string{"-c", "copy", "-f", "mpegts"},
		},
	}
}

// ErrProfilesNotFound is returned by LoadProfiles when the file does not exist.
var ErrProfilesNotFound = errors.New("transcode profiles file not found")

// LoadProfiles reads a JSON profile table from path.
func LoadProfiles(path string) (ProfileTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrProfilesNotFound, path)
		}
		return nil, fmt.Errorf("read transcode profiles: %w", err)
	}

	var table ProfileTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse transcode profiles %s: %w", path, err)
	}
	if table == nil {
		return nil, fmt.Errorf("parse transcode profiles %s: not a JSON object", path)
	}
	return table, nil
}
