// Package autostart registers the launcher to start at user login.
package autostart

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// AppID names the login item on every platform.
const AppID = "quicklaunch"

// LaunchAgentLabel is the reverse-DNS label of the macOS login item.
const LaunchAgentLabel = "io.github.quicklaunch"

// StartHiddenArg is passed to the executable when started at login.
const StartHiddenArg = "--hidden"

type backend interface {
	enable(exe string) error
	disable() error
	enabled() (bool, error)
}

// Test seams.
var (
	newBackendFn = platformBackend
	executableFn = os.Executable
)

// Enable registers exe to run at login. An empty exe means the running
// executable.
func Enable(exe string) error {
	if strings.TrimSpace(exe) == "" {
		resolved, err := executableFn()
		if err != nil {
			return fmt.Errorf("resolve executable: %w", err)
		}
		exe = resolved
	}
	abs, err := filepath.Abs(exe)
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	b, err := newBackendFn()
	if err != nil {
		return err
	}
	if err := b.enable(abs); err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	slog.Info("[INFO-AUTOSTART] login item registered", "exe", abs)
	return nil
}

// Disable removes the login item. Removing a missing item is not an error.
func Disable() error {
	b, err := newBackendFn()
	if err != nil {
		return err
	}
	if err := b.disable(); err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	slog.Info("[INFO-AUTOSTART] login item removed")
	return nil
}

// Enabled reports whether a login item is registered.
func Enabled() (bool, error) {
	b, err := newBackendFn()
	if err != nil {
		return false, err
	}
	return b.enabled()
}

// Apply brings the login item in line with want.
func Apply(want bool) error {
	if want {
		return Enable("")
	}
	return Disable()
}

// removeIfExists deletes path, treating a missing file as success.
func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
