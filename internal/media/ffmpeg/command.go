package ffmpeg

import (
	"strconv"
	"strings"

	"github.com/attaebra/tuner-ffmpeg/internal/constants"
	"github.com/attaebra/tuner-ffmpeg/internal/logger"
)

// reconnectArgs keep a live input open across upstream drops.
var reconnectArgs = []string{
	"-reconnect", "1",
	"-reconnect_at_eof", "1",
	"-reconnect_streamed", "1",
	"-reconnect_delay_max", "2",
}

// logLevels maps host logging levels to ffmpeg -loglevel values.
var logLevels = map[string]string{
	"debug":    "debug",
	"info":     "info",
	"error":    "error",
	"warning":  "warning",
	"critical": "fatal",
}

// AssembleCommand builds the full ffmpeg argument vector (binary first) for req.
//
// If req names a quality that table lacks, req.TranscodeQuality is set to the
// default quality before the profile is looked up.
func AssembleCommand(req *StreamRequest, table ProfileTable, ffmpegPath, logLevel string) []string {
	if req.TranscodeQuality != "" {
		logger.Info("Client requested a %s transcode for stream.", req.TranscodeQuality)
	}

	if _, ok := table[req.TranscodeQuality]; !ok {
		logger.Info("Transcode type %q not found, forcing '%s' transcoding.", req.TranscodeQuality, constants.DefaultQuality)
		req.TranscodeQuality = constants.DefaultQuality
	}
	profile := table[req.TranscodeQuality]

	cmd := []string{ffmpegPath}
	cmd = append(cmd, profile.Global...)
	cmd = append(cmd, profile.Input...)
	cmd = append(cmd, "-i", req.StreamInfo.URL)
	cmd = append(cmd, HeaderArgs(req.StreamInfo.Headers)...)
	cmd = append(cmd, DurationArgs(req.Duration)...)
	cmd = append(cmd, profile.Output...)
	cmd = append(cmd, LogLevelArgs(logLevel)...)
	cmd = append(cmd, constants.OutputSink)
	return cmd
}

// HeaderArgs returns the -headers argument pair, or nothing when there are no headers.
//
// Several headers are joined as "Name: Value" lines separated by CRLF; a single
// header is emitted as name and value concatenated. The result is wrapped in
// literal double quotes.
func HeaderArgs(headers Headers) []string {
	if len(headers) == 0 {
		return nil
	}

	var joined string
	if len(headers) > 1 {
		lines := make([]string, len(headers))
		for i, h := range headers {
			lines[i] = h.Name + ": " + h.Value
		}
		joined = strings.Join(lines, "\r\n")
	} else {
		joined = headers[0].Name + headers[0].Value
	}

	return []string{"-headers", `"` + joined + `"`}
}

// DurationArgs limits output to seconds when positive, otherwise asks ffmpeg to reconnect.
func DurationArgs(seconds float64) []string {
	if seconds > 0 {
		return []string{"-t", strconv.FormatFloat(seconds, 'f', -1, 64)}
	}
	return append([]string(nil), reconnectArgs...)
}

// ResolveLogLevel maps a host logging level to an ffmpeg log level.
func ResolveLogLevel(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "noob":
		level = "info"
	case "ssdp":
		level = "debug"
	case "warn":
		level = "warning"
	}

	if mapped, ok := logLevels[level]; ok {
		return mapped
	}
	logger.Warn("Unknown logging level %q, running ffmpeg at info", level)
	return "info"
}

// LogLevelArgs returns the ffmpeg verbosity arguments for a host logging level.
func LogLevelArgs(level string) []string {
	resolved := ResolveLogLevel(level)

	var args []string
	if resolved != "debug" {
		args = append(args, "-nostats", "-hide_banner")
	}
	return append(args, "-loglevel", resolved)
}

// StderrVisible reports whether ffmpeg's stderr should reach the host's stderr.
// Only the literal levels info and debug qualify; noob and ssdp do not.
func StderrVisible(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "info", "debug":
		return true
	}
	return false
}
