package transcoder

import (
	"context"

	"github.com/attaebra/tuner-ffmpeg/internal/constants"
	"github.com/attaebra/tuner-ffmpeg/internal/interfaces"
	"github.com/attaebra/tuner-ffmpeg/internal/logger"
	"github.com/attaebra/tuner-ffmpeg/internal/media/ffmpeg"
	"github.com/attaebra/tuner-ffmpeg/internal/utils"
)

// Setup locates ffmpeg, records its version in versions and persists the
// discovered path to cfg. It returns the recorded version, which is
// constants.VersionMissing when no usable binary was found.
func Setup(ctx context.Context, cfg interfaces.ConfigSource, versions interfaces.VersionRegistry) string {
	defer utils.TimeOperation("ffmpeg discovery")()

	platform := ffmpeg.Platform(versions.Version(constants.OperatingSystemKey))
	configured := cfg.GetString(constants.KeyFFmpegPath)

	path := ffmpeg.Locate(configured, platform)
	version := ffmpeg.ProbeVersion(ctx, path)

	if path != "" && path != configured {
		if err := cfg.SetString(constants.KeyFFmpegPath, path); err != nil {
			logger.Error("Failed to save ffmpeg path %s: %v", path, err)
		}
	}

	versions.Register(constants.TranscoderName, version, constants.VersionKindEnv)
	if version == constants.VersionMissing {
		logger.Error("ffmpeg not found, streams will be refused")
	} else {
		logger.Info("Using ffmpeg %s at %s", version, path)
	}
	return version
}
