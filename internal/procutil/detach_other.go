//go:build !windows

package procutil

import (
	"os/exec"
	"syscall"
)

// Detach starts cmd in a new session so it outlives the launcher and never
// receives its terminal's signals. Preserves any existing SysProcAttr fields.
func Detach(cmd *exec.Cmd) {
	if cmd == nil {
		return
	}
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setsid = true
}

// NewConsole is a no-op on non-Windows platforms; terminals are chosen by the caller.
func NewConsole(_ *exec.Cmd) {}

// SetCommandLine is a no-op on non-Windows platforms; argv is passed as-is.
func SetCommandLine(_ *exec.Cmd, _ string) {}
