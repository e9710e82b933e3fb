package main

import (
	"context"
	"sync"
	"sync/atomic"

	"quicklaunch/internal/config"
	"quicklaunch/internal/history"
	"quicklaunch/internal/hotkeys"
	"quicklaunch/internal/ipc"
	"quicklaunch/internal/notify"
	"quicklaunch/internal/opener"
	"quicklaunch/internal/sessionlog"
	"quicklaunch/internal/settings"
	"quicklaunch/internal/uithread"
)

// App is the Wails-bound application service.
type App struct {
	// Runtime context lifecycle.
	ctx   context.Context
	ctxMu sync.RWMutex

	// Runtime configuration. Written once during startup.
	cfg        config.Config
	configPath string

	// Backend services. Each is nil until startup reaches it, and the bound
	// methods guard against that through the require* helpers.
	store     *settings.Store
	journal   *history.Journal
	notifier  notify.Notifier
	opener    *opener.Opener
	loop      *uithread.Loop
	hotkeys   hotkeyRegistrar
	ipcServer *ipc.Server
	logRing   *sessionlog.Ring

	// hotkeyMu serialises applyHotkey so a settings change and startup never
	// race on the same registration.
	hotkeyMu     sync.Mutex
	hotkeyHandle hotkeys.Handle

	// startHidden keeps the window hidden on startup (login item launch).
	startHidden bool

	// Window visibility state.
	windowMu       sync.Mutex
	windowVisible  bool
	windowToggling atomic.Bool // CAS guard against overlapping toggleWindow calls
	shuttingDown   atomic.Bool

	// Background worker cancellation/waits.
	unsubscribe func()
	watchCancel context.CancelFunc
	loopCancel  context.CancelFunc
	bgWG        sync.WaitGroup
}

// NewApp creates the app service. startHidden suppresses the initial window.
func NewApp(startHidden bool) *App {
	return &App{
		startHidden: startHidden,
		logRing:     sessionlog.NewRing(sessionlog.DefaultRingSize),
		notifier:    notify.Nop{},
	}
}

func (a *App) setRuntimeContext(ctx context.Context) {
	a.ctxMu.Lock()
	a.ctx = ctx
	a.ctxMu.Unlock()
}

func (a *App) runtimeContext() context.Context {
	a.ctxMu.RLock()
	ctx := a.ctx
	a.ctxMu.RUnlock()
	return ctx
}
