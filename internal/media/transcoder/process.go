package transcoder

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/attaebra/tuner-ffmpeg/internal/procgroup"
)

// process is a running ffmpeg with its stdout pipe and Wait result.
type process struct {
	cmd    *exec.Cmd
	stdout *os.File
	waitCh chan error
}

// startProcess launches args[0] with args[1:] in its own process group. stdout is
// an os.Pipe so that closing the read end unblocks a pending read.
func startProcess(args []string, stderr io.Writer, grace time.Duration) (*process, error) {
	if len(args) == 0 || args[0] == "" {
		return nil, fmt.Errorf("no ffmpeg path configured")
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}

	// #nosec G204 -- binary was resolved at setup, arguments come from the profile table
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdout = w
	cmd.Stderr = stderr
	cmd.WaitDelay = grace
	procgroup.Isolate(cmd)

	if err := cmd.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		return nil, fmt.Errorf("start %s: %w", args[0], err)
	}
	// The child holds its own copy of the write end.
	_ = w.Close()

	waitCh := make(chan error, 1)
	go func() {
		waitCh <- cmd.Wait()
	}()

	return &process{cmd: cmd, stdout: r, waitCh: waitCh}, nil
}
