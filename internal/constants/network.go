// Package constants provides shared constants used throughout the application.
package constants

// Network defaults.
const (
	// DefaultListenAddr is where the media server listens (5004 is the HDHomeRun media port).
	DefaultListenAddr = ":5004"

	// DefaultTunerCount is the number of emulated tuners.
	DefaultTunerCount = 2

	// DefaultDeviceID is reported by discover.json until one is configured.
	DefaultDeviceID = "00ABCDEF"

	// DefaultStreamRateLimit is the number of stream requests allowed per minute per client IP.
	DefaultStreamRateLimit = 30
)

// HeaderHDHomeRunError carries tune failures to HDHomeRun clients.
const HeaderHDHomeRunError = "X-HDHomeRun-Error"

// HTTP content types.
const (
	// ContentTypeJSON is the MIME type for JSON responses.
	ContentTypeJSON = "application/json"

	// ContentTypeStream is the MIME type for MPEG-TS streams.
	ContentTypeStream = "video/mp2t"

	// ContentTypeText is the MIME type for the status page.
	ContentTypeText = "text/plain; charset=utf-8"
)

// Stream defaults.
const (
	// DefaultBytesPerRead is the chunk size requested from the transcoder per read.
	DefaultBytesPerRead = 1152000

	// DefaultBufferSize is the size of the buffered reader in front of the transcoder's stdout.
	DefaultBufferSize = 1024 * 1024 // 1MB
)
