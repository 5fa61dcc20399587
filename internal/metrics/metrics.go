// Package metrics provides Prometheus metrics for the ffmpeg process lifecycle.
// Labels are bounded enums; no session or URL labels.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FFmpegStartTotal counts ffmpeg launches by result (ok, error).
	FFmpegStartTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tuner_ffmpeg_start_total",
		Help: "Total number of ffmpeg launches, by result.",
	}, []string{"result"})

	// FFmpegExitTotal counts finished streams by why they ended.
	FFmpegExitTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tuner_ffmpeg_exit_total",
		Help: "Total number of finished ffmpeg streams, by reason (eof, failed, lock_released, closed, canceled).",
	}, []string{"reason"})

	// FFmpegBytesTotal tracks bytes read from ffmpeg stdout.
	FFmpegBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tuner_ffmpeg_bytes_total",
		Help: "Total bytes read from ffmpeg stdout.",
	})

	// FFmpegSignalTotal counts signals sent to ffmpeg process groups.
	FFmpegSignalTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tuner_ffmpeg_signal_total",
		Help: "Total number of signals sent to ffmpeg process groups, by signal and outcome.",
	}, []string{"signal", "outcome"})

	// ProfileFallbackTotal counts requests served with the default profile.
	ProfileFallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tuner_profile_fallback_total",
		Help: "Total number of requests that fell back to the default transcode profile, by cause.",
	}, []string{"cause"})
)

// Exit reasons.
const (
	ExitEOF          = "eof"
	ExitFailed       = "failed"
	ExitLockReleased = "lock_released"
	ExitClosed       = "closed"
	ExitCanceled     = "canceled"
)

// IncStart records one launch attempt.
func IncStart(ok bool) {
	if ok {
		FFmpegStartTotal.WithLabelValues("ok").Inc()
		return
	}
	FFmpegStartTotal.WithLabelValues("error").Inc()
}

// IncExit records how a stream ended.
func IncExit(reason string) {
	FFmpegExitTotal.WithLabelValues(reason).Inc()
}

// AddBytes records n bytes read from ffmpeg.
func AddBytes(n int) {
	if n > 0 {
		FFmpegBytesTotal.Add(float64(n))
	}
}

// IncSignal records a signal delivery attempt. outcome is sent, esrch or error.
func IncSignal(signal, outcome string) {
	FFmpegSignalTotal.WithLabelValues(signal, outcome).Inc()
}

// IncProfileFallback records a default-profile fallback. cause is missing_file,
// invalid_file or unknown_quality.
func IncProfileFallback(cause string) {
	ProfileFallbackTotal.WithLabelValues(cause).Inc()
}
