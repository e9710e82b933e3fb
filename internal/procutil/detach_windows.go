//go:build windows

package procutil

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// Detach puts cmd in its own process group so console control events sent to
// the launcher do not reach it. Preserves any existing SysProcAttr fields.
func Detach(cmd *exec.Cmd) {
	if cmd == nil {
		return
	}
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.CreationFlags |= windows.CREATE_NEW_PROCESS_GROUP
}

// NewConsole starts cmd in a new console window.
func NewConsole(cmd *exec.Cmd) {
	if cmd == nil {
		return
	}
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.CreationFlags |= windows.CREATE_NEW_CONSOLE
}

// SetCommandLine replaces the argv-quoted command line verbatim. cmd.exe /K
// payloads and explorer /select, arguments need quoting Go would otherwise
// escape.
func SetCommandLine(cmd *exec.Cmd, cmdLine string) {
	if cmd == nil || cmdLine == "" {
		return
	}
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.CmdLine = cmdLine
}
