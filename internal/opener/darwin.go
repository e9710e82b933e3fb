package opener

import (
	"log/slog"
	"os/exec"
	"strings"
)

type darwinPlatform struct{}

func (darwinPlatform) OpenFile(path string) error   { return startFn(exec.Command("open", path)) }
func (darwinPlatform) OpenFolder(path string) error { return startFn(exec.Command("open", path)) }
func (darwinPlatform) OpenURL(url string) error     { return openURLWith("open", url) }

// Reveal selects path in Finder.
func (darwinPlatform) Reveal(path string) error {
	return startFn(exec.Command("open", "-R", path))
}

// RunCommand runs text in a new Terminal.app window, falling back to a
// headless shell when osascript is unavailable.
func (darwinPlatform) RunCommand(text string) error {
	if _, err := lookPathFn("osascript"); err != nil {
		slog.Warn("[WARN-OPEN] osascript not found, running command without a terminal", "error", err)
		return runHeadless(text)
	}
	script := `tell application "Terminal" to do script "` + appleScriptEscape(text) + `"`
	return startFn(exec.Command("osascript",
		"-e", script,
		"-e", `tell application "Terminal" to activate`,
	))
}

func appleScriptEscape(text string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(text)
}

// runHeadless runs text through the POSIX shell with no visible window.
func runHeadless(text string) error {
	return startFn(exec.Command("/bin/sh", "-c", text))
}
