// Package procgroup starts child processes in their own process group and
// tears the whole group down.
package procgroup

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/attaebra/tuner-ffmpeg/internal/metrics"
)

// Terminate stops the process group of cmd. It sends SIGTERM, waits up to grace
// for waitCh to deliver the Wait result, then sends SIGKILL and drains waitCh.
// It returns the Wait error. A nil cmd or process returns nil.
func Terminate(cmd *exec.Cmd, waitCh <-chan error, grace time.Duration) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}

	metrics.IncSignal("SIGTERM", outcome(Signal(cmd, syscall.SIGTERM)))

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case err := <-waitCh:
		return err
	case <-timer.C:
	}

	metrics.IncSignal("SIGKILL", outcome(Signal(cmd, syscall.SIGKILL)))
	return <-waitCh
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "sent"
	case errors.Is(err, os.ErrProcessDone), errors.Is(err, syscall.ESRCH):
		return "esrch"
	default:
		return "error"
	}
}
