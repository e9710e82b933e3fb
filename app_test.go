package main

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"quicklaunch/internal/history"
	"quicklaunch/internal/hotkeys"
	"quicklaunch/internal/opener"
	"quicklaunch/internal/settings"
)

// NOTE: tests in this package swap package-level function variables
// (runtimeEventsEmitFn, newHotkeyManagerFn, ...). Do not use t.Parallel().

type fakePlatform struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakePlatform) record(op, arg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op+":"+arg)
	return f.err
}

func (f *fakePlatform) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakePlatform) OpenFile(path string) error   { return f.record("file", path) }
func (f *fakePlatform) OpenFolder(path string) error { return f.record("folder", path) }
func (f *fakePlatform) OpenURL(url string) error     { return f.record("url", url) }
func (f *fakePlatform) RunCommand(text string) error { return f.record("command", text) }
func (f *fakePlatform) Reveal(path string) error     { return f.record("reveal", path) }

type recordingNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (r *recordingNotifier) Notify(title, _ string) {
	r.mu.Lock()
	r.titles = append(r.titles, title)
	r.mu.Unlock()
}

func (r *recordingNotifier) Titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.titles...)
}

type fakeHotkeys struct {
	mu         sync.Mutex
	registered []string
	unregister []hotkeys.Handle
	closed     int
	err        error
	active     string
	trigger    func()
	next       hotkeys.Handle
	dispatcher hotkeys.Dispatcher
}

func (f *fakeHotkeys) RegisterShortcut(shortcut string, onTrigger func()) (hotkeys.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, shortcut)
	if f.err != nil {
		f.active = ""
		return 0, f.err
	}
	f.next++
	f.active = shortcut
	f.trigger = onTrigger
	return f.next, nil
}

func (f *fakeHotkeys) Unregister(h hotkeys.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unregister = append(f.unregister, h)
	if h == f.next {
		f.active = ""
	}
	return nil
}

func (f *fakeHotkeys) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	f.active = ""
	return nil
}

func (f *fakeHotkeys) ActiveBinding() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// dispatchTrigger simulates a key press: the callback goes through the
// dispatcher the app handed to the manager.
func (f *fakeHotkeys) dispatchTrigger() {
	f.mu.Lock()
	fn, d := f.trigger, f.dispatcher
	f.mu.Unlock()
	d.Post(fn)
}

type emittedEvent struct {
	name    string
	payload any
}

type eventRecorder struct {
	mu     sync.Mutex
	events []emittedEvent
}

func (r *eventRecorder) emit(_ context.Context, name string, data ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var payload any
	if len(data) > 0 {
		payload = data[0]
	}
	r.events = append(r.events, emittedEvent{name: name, payload: payload})
}

func (r *eventRecorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.name == name {
			n++
		}
	}
	return n
}

// stubRuntime replaces the Wails runtime seams with no-ops and records
// emitted events. Everything is restored in t.Cleanup.
func stubRuntime(t *testing.T) *eventRecorder {
	t.Helper()
	origEmit := runtimeEventsEmitFn
	origMin := runtimeWindowIsMinimisedFn
	origHide := runtimeWindowHideFn
	origShow := runtimeWindowShowFn
	origUnmin := runtimeWindowUnminimiseFn
	origTop := runtimeWindowSetAlwaysOnTopFn
	origSetPos := runtimeWindowSetPositionFn
	origGetPos := runtimeWindowGetPositionFn
	origGetSize := runtimeWindowGetSizeFn
	origClip := runtimeClipboardSetTextFn
	t.Cleanup(func() {
		runtimeEventsEmitFn = origEmit
		runtimeWindowIsMinimisedFn = origMin
		runtimeWindowHideFn = origHide
		runtimeWindowShowFn = origShow
		runtimeWindowUnminimiseFn = origUnmin
		runtimeWindowSetAlwaysOnTopFn = origTop
		runtimeWindowSetPositionFn = origSetPos
		runtimeWindowGetPositionFn = origGetPos
		runtimeWindowGetSizeFn = origGetSize
		runtimeClipboardSetTextFn = origClip
	})

	rec := &eventRecorder{}
	runtimeEventsEmitFn = rec.emit
	runtimeWindowIsMinimisedFn = func(context.Context) bool { return false }
	runtimeWindowHideFn = func(context.Context) {}
	runtimeWindowShowFn = func(context.Context) {}
	runtimeWindowUnminimiseFn = func(context.Context) {}
	runtimeWindowSetAlwaysOnTopFn = func(context.Context, bool) {}
	runtimeWindowSetPositionFn = func(context.Context, int, int) {}
	runtimeWindowGetPositionFn = func(context.Context) (int, int) { return 0, 0 }
	runtimeWindowGetSizeFn = func(context.Context) (int, int) { return 400, 600 }
	runtimeClipboardSetTextFn = func(context.Context, string) error { return nil }
	return rec
}

// testApp wires an App the way startup does, minus the OS-facing pieces.
type testApp struct {
	*App
	platform *fakePlatform
	notifier *recordingNotifier
	hotkeys  *fakeHotkeys
	events   *eventRecorder
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	events := stubRuntime(t)

	dir := t.TempDir()
	store, err := settings.Open(dir)
	if err != nil {
		t.Fatalf("settings.Open: %v", err)
	}
	journal, err := history.Open(filepath.Join(dir, history.FileName), 0)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() { _ = journal.Close() })

	app := NewApp(false)
	app.setRuntimeContext(context.Background())
	app.setWindowVisible(true)
	app.store = store
	app.journal = journal

	ta := &testApp{
		App:      app,
		platform: &fakePlatform{},
		notifier: &recordingNotifier{},
		hotkeys:  &fakeHotkeys{},
		events:   events,
	}
	app.notifier = ta.notifier
	app.opener = opener.New(ta.platform, ta.notifier, opener.WithObserver(app.recordOutcome))
	app.hotkeys = ta.hotkeys
	return ta
}
