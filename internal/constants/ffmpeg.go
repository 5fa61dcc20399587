package constants

import "time"

// Transcoder defaults.
const (
	// TranscoderName is the name the transcoder is registered under in the version registry.
	TranscoderName = "ffmpeg"

	// VersionMissing is recorded when no usable transcoder could be found.
	VersionMissing = "Missing"

	// VersionKindEnv marks versions discovered from the environment.
	VersionKindEnv = "env"

	// OperatingSystemKey is the registry entry holding the platform identifier.
	OperatingSystemKey = "Operating System"

	// DefaultQuality is the profile used when a request names none or an unknown one.
	DefaultQuality = "heavy"

	// ProfilesFileName is looked up beside the executable when no profiles path is configured.
	ProfilesFileName = "transcode.json"

	// OutputSink is the final argument of every transcoder command.
	OutputSink = "pipe:stdout"

	// TerminateGrace is how long a terminated transcoder gets before it is killed.
	TerminateGrace = 5 * time.Second

	// ProbeTimeout bounds the version probe.
	ProbeTimeout = 10 * time.Second
)

// Configuration keys understood by the ConfigSource.
const (
	KeyFFmpegPath     = "ffmpeg.path"
	KeyFFmpegBuffSize = "ffmpeg.buffsize"
	KeyFFmpegProfiles = "ffmpeg.profiles"
	KeyLoggingLevel   = "logging.level"
)
