//go:build windows

package procgroup

import (
	"os/exec"
	"syscall"
)

// Isolate is a no-op on Windows.
func Isolate(cmd *exec.Cmd) {}

// Signal maps SIGKILL to Process.Kill. Windows has no SIGTERM; the caller's grace
// period expires and SIGKILL follows.
func Signal(cmd *exec.Cmd, sig syscall.Signal) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	if sig == syscall.SIGKILL {
		return cmd.Process.Kill()
	}
	return nil
}
