//go:build !windows && !linux

package hotkeys

import "log/slog"

type stubBackend struct{}

type stubRegistration struct{}

func newPlatformBackend() backend {
	return stubBackend{}
}

// register validates the binding but installs nothing; the trigger never fires.
func (stubBackend) register(binding Binding, _ func()) (registration, error) {
	slog.Warn("[hotkey] DEBUG global hotkeys are not supported on this platform; binding validated but will never fire",
		"binding", binding.Normalized())
	return stubRegistration{}, nil
}

func (stubRegistration) stop() error { return nil }
