//go:build unix

package procgroup

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// Isolate makes cmd the leader of a new process group once started, so the
// group id equals its pid and Signal reaches every descendant.
func Isolate(cmd *exec.Cmd) {
	attr := cmd.SysProcAttr
	if attr == nil {
		attr = &syscall.SysProcAttr{}
		cmd.SysProcAttr = attr
	}
	attr.Setpgid = true
}

// Signal delivers sig to the group led by cmd. It returns os.ErrProcessDone
// once the group is gone and nil for a command that never started.
func Signal(cmd *exec.Cmd, sig syscall.Signal) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}

	err := unix.Kill(-cmd.Process.Pid, sig)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ESRCH):
		return os.ErrProcessDone
	case errors.Is(err, unix.EPERM):
		// Some member is not ours to signal. The leader still is.
		return cmd.Process.Signal(sig)
	}
	return err
}
