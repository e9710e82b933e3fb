//go:build darwin

package autostart

import (
	"fmt"
	"os"
	"path/filepath"
)

func platformBackend() (backend, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home: %w", err)
	}
	return launchAgent{dir: filepath.Join(home, "Library", "LaunchAgents"), label: LaunchAgentLabel}, nil
}
