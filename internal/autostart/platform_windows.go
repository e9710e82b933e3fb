//go:build windows

package autostart

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`

func platformBackend() (backend, error) {
	return runKey{root: registry.CURRENT_USER, path: runKeyPath, name: AppID}, nil
}

// runKey manages one value under HKCU\...\Run.
type runKey struct {
	root registry.Key
	path string
	name string
}

func (r runKey) enable(exe string) error {
	key, _, err := registry.CreateKey(r.root, r.path, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open run key: %w", err)
	}
	defer key.Close()
	if err := key.SetStringValue(r.name, `"`+exe+`" `+StartHiddenArg); err != nil {
		return fmt.Errorf("set run value: %w", err)
	}
	return nil
}

func (r runKey) disable() error {
	key, err := registry.OpenKey(r.root, r.path, registry.SET_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open run key: %w", err)
	}
	defer key.Close()
	if err := key.DeleteValue(r.name); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("delete run value: %w", err)
	}
	return nil
}

func (r runKey) enabled() (bool, error) {
	key, err := registry.OpenKey(r.root, r.path, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("open run key: %w", err)
	}
	defer key.Close()
	if _, _, err := key.GetStringValue(r.name); err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read run value: %w", err)
	}
	return true, nil
}
