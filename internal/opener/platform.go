// Package opener hands launcher items to the operating system.
package opener

import (
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
	"time"

	"github.com/pkg/browser"

	"quicklaunch/internal/procutil"
)

// Platform is the per-OS set of open primitives. Implementations return an
// error when the OS refuses to start the handler and never log failures
// themselves.
type Platform interface {
	OpenFile(path string) error
	OpenFolder(path string) error
	OpenURL(url string) error
	RunCommand(text string) error
	Reveal(path string) error
}

// Options tunes platform behaviour.
type Options struct {
	// Terminal overrides terminal emulator discovery for commands on Linux.
	Terminal string
}

// Test seams over process creation and lookups.
var (
	startFn       = startDetached
	lookPathFn    = exec.LookPath
	browserOpenFn = openBrowser
)

func init() {
	// pkg/browser copies the helper's output to ours by default.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// Detect returns the Platform for the running OS.
func Detect(opts Options) Platform {
	return ForOS(runtime.GOOS, opts)
}

// ForOS returns the Platform for goos. Unknown systems get the Linux
// (freedesktop) behaviour.
func ForOS(goos string, opts Options) Platform {
	switch goos {
	case "windows":
		return &windowsPlatform{shellExecute: shellExecuteFn}
	case "darwin":
		return &darwinPlatform{}
	default:
		return &linuxPlatform{terminal: opts.Terminal, showItems: showItemsFn}
	}
}

// startDetached starts cmd without waiting on it. The child is reaped in the
// background so it never lingers as a zombie.
func startDetached(cmd *exec.Cmd) error {
	procutil.Detach(cmd)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			slog.Debug("[DEBUG-OPEN] launched process exited with error", "args", cmd.Args, "error", err)
		}
	}()
	return nil
}

// browserAcceptWindow is how long a pkg/browser launch may block before it
// counts as accepted. pkg/browser waits on the opener it runs.
const browserAcceptWindow = 500 * time.Millisecond

// openURLWith starts handler on url without waiting on it. Without the
// handler on PATH, pkg/browser probes its own list of openers.
func openURLWith(handler, url string) error {
	if _, err := lookPathFn(handler); err != nil {
		slog.Debug("[DEBUG-OPEN] url handler not found, falling back to browser lookup", "handler", handler, "error", err)
		return browserOpenFn(url)
	}
	return startFn(exec.Command(handler, url))
}

// openBrowser returns errors pkg/browser reports within browserAcceptWindow.
// Later failures are only logged.
func openBrowser(url string) error {
	done := make(chan error, 1)
	go func() { done <- browser.OpenURL(url) }()

	timer := time.NewTimer(browserAcceptWindow)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("open url: %w", err)
		}
		return nil
	case <-timer.C:
		go func() {
			if err := <-done; err != nil {
				slog.Warn("[WARN-OPEN] browser exited with error", "url", url, "error", err)
			}
		}()
		return nil
	}
}
