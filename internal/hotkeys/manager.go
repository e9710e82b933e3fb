package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrRegistrationFailed wraps every OS refusal to reserve a chord.
var ErrRegistrationFailed = errors.New("hotkey registration failed")

// stopTimeout bounds how long teardown waits for a listener to exit.
const stopTimeout = 2 * time.Second

// Handle identifies one Register call. The zero Handle is never issued.
type Handle uint64

// Dispatcher marshals a callback onto the UI-affinity context.
type Dispatcher interface {
	Post(fn func())
}

// DispatchFunc adapts a function to Dispatcher.
type DispatchFunc func(fn func())

// Post calls f(fn).
func (f DispatchFunc) Post(fn func()) { f(fn) }

// backend installs one OS-level registration. fire is invoked from the
// listener goroutine and must not block.
type backend interface {
	register(binding Binding, fire func()) (registration, error)
}

// registration is a live OS reservation. stop must make the listener exit.
type registration interface {
	stop() error
}

type activeHotkey struct {
	handle  Handle
	binding Binding
	reg     registration
}

// Manager manages one global hotkey registration.
type Manager struct {
	mu         sync.Mutex
	backend    backend
	dispatcher Dispatcher
	nextHandle Handle
	active     *activeHotkey // nil when no hotkey is registered
}

// NewManager creates a manager for the running platform. Trigger callbacks are
// posted to dispatcher; a nil dispatcher runs them on a fresh goroutine.
func NewManager(dispatcher Dispatcher) *Manager {
	return newManager(newPlatformBackend(), dispatcher)
}

func newManager(b backend, dispatcher Dispatcher) *Manager {
	if dispatcher == nil {
		dispatcher = DispatchFunc(func(fn func()) { go fn() })
	}
	return &Manager{backend: b, dispatcher: dispatcher}
}

// RegisterShortcut parses shortcut and registers it.
func (m *Manager) RegisterShortcut(shortcut string, onTrigger func()) (Handle, error) {
	binding, err := ParseBinding(shortcut)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}
	return m.Register(binding, onTrigger)
}

// Register reserves binding system-wide and binds onTrigger to it.
// A live registration is released first; on failure the manager is left
// with no registration at all.
func (m *Manager) Register(binding Binding, onTrigger func()) (Handle, error) {
	if onTrigger == nil {
		return 0, errors.New("onTrigger callback is required")
	}
	if binding.IsZero() {
		return 0, fmt.Errorf("%w: binding is empty", ErrRegistrationFailed)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.stopLocked(); err != nil {
		slog.Warn("[hotkey] previous registration did not stop cleanly", "error", err)
	}

	dispatcher := m.dispatcher
	reg, err := m.backend.register(binding, func() {
		dispatcher.Post(onTrigger)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrRegistrationFailed, binding.Normalized(), err)
	}

	m.nextHandle++
	m.active = &activeHotkey{
		handle:  m.nextHandle,
		binding: binding,
		reg:     reg,
	}
	slog.Debug("[hotkey] registered", "binding", binding.Normalized(), "handle", m.nextHandle)
	return m.nextHandle, nil
}

// Unregister releases the registration identified by h. Unknown, stale, or
// already released handles are ignored.
func (m *Manager) Unregister(h Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil || m.active.handle != h {
		return nil
	}
	return m.stopLocked()
}

// Close releases whatever registration is live.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopLocked()
}

// Active returns the live binding, if any.
func (m *Manager) Active() (Binding, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return Binding{}, false
	}
	return m.active.binding, true
}

// ActiveBinding returns the normalized binding string for the active hotkey.
func (m *Manager) ActiveBinding() string {
	b, ok := m.Active()
	if !ok {
		return ""
	}
	return b.Normalized()
}

func (m *Manager) stopLocked() error {
	if m.active == nil {
		return nil
	}
	ah := m.active
	m.active = nil
	if err := ah.reg.stop(); err != nil {
		return fmt.Errorf("release hotkey %s: %w", ah.binding.Normalized(), err)
	}
	slog.Debug("[hotkey] released", "binding", ah.binding.Normalized(), "handle", ah.handle)
	return nil
}

// waitDone waits for a listener to close done, bounded by stopTimeout.
func waitDone(done <-chan struct{}, what string) error {
	timer := time.NewTimer(stopTimeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		slog.Warn("[hotkey] DEBUG listener stop timed out, goroutine may leak", "listener", what)
		return fmt.Errorf("%s listener stop timed out", what)
	}
}
