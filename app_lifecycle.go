package main

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"quicklaunch/internal/autostart"
	"quicklaunch/internal/config"
	"quicklaunch/internal/history"
	"quicklaunch/internal/hotkeys"
	"quicklaunch/internal/ipc"
	"quicklaunch/internal/notify"
	"quicklaunch/internal/opener"
	"quicklaunch/internal/procutil"
	"quicklaunch/internal/settings"
	"quicklaunch/internal/uithread"
	"quicklaunch/internal/workerutil"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// hotkeyRegistrar is the part of hotkeys.Manager the app drives.
type hotkeyRegistrar interface {
	RegisterShortcut(shortcut string, onTrigger func()) (hotkeys.Handle, error)
	Unregister(h hotkeys.Handle) error
	Close() error
	ActiveBinding() string
}

// Test seams.
var (
	loadConfigFn       = loadRuntimeConfig
	openStoreFn        = settings.Open
	openHistoryFn      = history.Open
	newNotifierFn      = notify.New
	detectPlatformFn   = opener.Detect
	applyAutostartFn   = autostart.Apply
	autostartEnabledFn = autostart.Enabled
	newIPCServerFn     = ipc.NewServer
	ipcAddressFn       = ipc.DefaultAddress
	newHotkeyManagerFn = func(d hotkeys.Dispatcher) hotkeyRegistrar { return hotkeys.NewManager(d) }

	runtimeEventsEmitFn           = runtime.EventsEmit
	runtimeWindowIsMinimisedFn    = runtime.WindowIsMinimised
	runtimeWindowHideFn           = runtime.WindowHide
	runtimeWindowShowFn           = runtime.WindowShow
	runtimeWindowUnminimiseFn     = runtime.WindowUnminimise
	runtimeWindowSetAlwaysOnTopFn = runtime.WindowSetAlwaysOnTop
	runtimeWindowSetPositionFn    = runtime.WindowSetPosition
	runtimeWindowGetPositionFn    = runtime.WindowGetPosition
	runtimeWindowGetSizeFn        = runtime.WindowGetSize
	runtimeClipboardSetTextFn     = runtime.ClipboardSetText
)

const (
	appName = "Quick Launch"

	// shutdownStepTimeout bounds each teardown step.
	shutdownStepTimeout = 2 * time.Second
	// historyWriteTimeout bounds one journal write from the opener observer.
	historyWriteTimeout = 2 * time.Second
)

// loadRuntimeConfig reads config.yaml (creating it on first run) and layers
// .env and environment overrides on top. Failures fall back to defaults.
func loadRuntimeConfig(path string) (config.Config, []string) {
	warnings := config.ConsumeDefaultPathWarnings()
	cfg, err := config.EnsureFile(path)
	if err != nil {
		cfg = config.DefaultConfig()
		warnings = append(warnings, "failed to load config, running with defaults: "+err.Error())
	}
	withEnv, err := config.LoadEnv(path, cfg)
	if err != nil {
		warnings = append(warnings, "failed to apply .env overrides: "+err.Error())
	} else {
		cfg = withEnv
	}
	return cfg, warnings
}

// bootstrap runs the startup steps that must precede the Wails window:
// runtime config, logging and the settings store. The returned func releases
// the log file and must run after shutdown.
func (a *App) bootstrap(configPath string) func() {
	a.configPath = configPath
	cfg, warnings := loadConfigFn(configPath)
	a.cfg = cfg
	closeLog := a.configureLogging(cfg)
	for _, w := range warnings {
		slog.Warn("[WARN-CONFIG] " + w)
	}
	slog.Debug("[DEBUG-CONFIG] runtime config loaded",
		"path", configPath, "logLevel", cfg.LogLevel, "history", cfg.History.Enabled)

	dataDir := cfg.ResolveDataDir(configPath)
	store, err := openStoreFn(dataDir)
	if err != nil {
		slog.Error("[ERROR-SETTINGS] settings store unavailable", "dir", dataDir, "error", err)
	} else {
		a.store = store
	}
	return closeLog
}

func (a *App) startup(ctx context.Context) {
	procutil.ConsoleUTF8()

	a.setRuntimeContext(ctx)
	a.setWindowVisible(!a.startHidden)

	if a.store != nil && a.cfg.History.Enabled {
		path := filepath.Join(a.store.Dir(), history.FileName)
		journal, err := openHistoryFn(path, a.cfg.History.MaxRows)
		if err != nil {
			slog.Warn("[WARN-HISTORY] launch history disabled", "path", path, "error", err)
		} else {
			a.journal = journal
		}
	}

	a.notifier = newNotifierFn(a.cfg.Notifications, appName)
	a.opener = opener.New(
		detectPlatformFn(opener.Options{Terminal: a.cfg.Terminal}),
		a.notifier,
		opener.WithObserver(a.recordOutcome),
	)

	a.startUILoop(ctx)
	a.hotkeys = newHotkeyManagerFn(hotkeys.DispatchFunc(func(fn func()) { a.loop.Post(fn) }))

	if a.store != nil {
		a.restoreWindowPosition(ctx, a.store.Settings().MainWindow)
		a.applyHotkey(a.store.Settings().Hotkey)
		a.syncAutostart(a.store.Settings().AutoLaunch.Enabled)
		a.unsubscribe = a.store.Subscribe(a.onStoreChange)
		a.startWatcher(ctx)
	}

	a.startIPCServer()
}

func (a *App) startUILoop(parent context.Context) {
	loopCtx, cancel := context.WithCancel(parent)
	a.loop = uithread.New(uithread.DefaultQueueSize)
	a.loopCancel = cancel
	a.bgWG.Go(func() { a.loop.Run(loopCtx) })
}

func (a *App) startWatcher(parent context.Context) {
	watchCtx, cancel := context.WithCancel(parent)
	a.watchCancel = cancel
	workerutil.RunWithPanicRecovery(watchCtx, "settings-watcher", &a.bgWG,
		func(ctx context.Context) {
			if err := a.store.Watch(ctx); err != nil {
				slog.Warn("[WARN-SETTINGS] external edit watcher stopped", "error", err)
			}
		},
		workerutil.RecoveryOptions{
			IsShutdown: a.shuttingDown.Load,
		},
	)
}

func (a *App) startIPCServer() {
	server := newIPCServerFn(ipcAddressFn(), ipc.ExecutorFunc(a.executeIPC))
	if err := server.Start(); err != nil {
		slog.Warn("[ipc] server failed to start, second launches cannot reach this instance", "error", err)
		return
	}
	a.ipcServer = server
	slog.Info("[ipc] server listening", "address", server.Address())
}

func (a *App) shutdown(_ context.Context) {
	if !a.shuttingDown.CompareAndSwap(false, true) {
		return
	}

	if a.ipcServer != nil {
		if !waitWithTimeout(func() {
			if err := a.ipcServer.Stop(); err != nil {
				slog.Warn("[ipc] server stop failed", "error", err)
			}
		}, shutdownStepTimeout) {
			slog.Warn("[ipc] timed out stopping server")
		}
	}
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.watchCancel != nil {
		a.watchCancel()
	}
	if a.hotkeys != nil {
		if !waitWithTimeout(func() {
			if err := a.hotkeys.Close(); err != nil {
				slog.Warn("[hotkey] close failed", "error", err)
			}
		}, shutdownStepTimeout) {
			slog.Warn("[hotkey] timed out releasing hotkey")
		}
	}
	if a.loopCancel != nil {
		a.loopCancel()
	}
	if !waitWithTimeout(a.bgWG.Wait, shutdownStepTimeout) {
		slog.Warn("[WARN-WORKER] timed out waiting for background workers during shutdown")
	}
	if err := a.journal.Close(); err != nil {
		slog.Warn("[WARN-HISTORY] close failed", "error", err)
	}
	a.setRuntimeContext(nil)
}

func waitWithTimeout(waitFn func(), timeout time.Duration) bool {
	// The waiting goroutine may outlive timeout when waitFn blocks; this is
	// only used on shutdown paths where the process is about to exit.
	done := make(chan struct{})
	go func() {
		waitFn()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

// applyHotkey brings the global registration in line with hk. A refused
// registration is logged once and leaves the feature off until the next
// settings change.
func (a *App) applyHotkey(hk settings.HotkeySettings) {
	if a.hotkeys == nil {
		return
	}
	a.hotkeyMu.Lock()
	defer a.hotkeyMu.Unlock()

	if !hk.Enabled {
		if err := a.hotkeys.Unregister(a.hotkeyHandle); err != nil {
			slog.Warn("[hotkey] release failed", "error", err)
		}
		a.hotkeyHandle = 0
		slog.Info("[hotkey] global hotkey disabled")
		return
	}

	handle, err := a.hotkeys.RegisterShortcut(hk.Shortcut, a.toggleWindow)
	if err != nil {
		a.hotkeyHandle = 0
		slog.Warn("[hotkey] global hotkey unavailable for this session", "shortcut", hk.Shortcut, "error", err)
		return
	}
	a.hotkeyHandle = handle
	slog.Info("[hotkey] global hotkey registered", "binding", a.hotkeys.ActiveBinding())
}

// syncAutostart reconciles the login item with the saved preference. A login
// item already in the wanted state is left alone.
func (a *App) syncAutostart(want bool) {
	if have, err := autostartEnabledFn(); err == nil && have == want {
		return
	}
	if err := applyAutostartFn(want); err != nil {
		slog.Warn("[WARN-AUTOSTART] could not update login item", "enabled", want, "error", err)
	}
}

// onStoreChange runs after every store mutation, including external edits.
func (a *App) onStoreChange(change settings.Change) {
	if change.Items {
		a.emitRuntimeEvent(itemsChangedEvent, a.store.Items())
	}
	if !change.Settings {
		return
	}
	current := a.store.Settings()
	if change.HotkeyChanged {
		a.applyHotkey(current.Hotkey)
	}
	if change.AutoLaunchChanged {
		a.syncAutostart(current.AutoLaunch.Enabled)
	}
	a.emitRuntimeEvent(settingsChangedEvent, current)
}

// recordOutcome is the opener observer: successful opens bump the item's
// recency and every open attempt lands in the journal.
func (a *App) recordOutcome(out opener.Outcome) {
	if out.Action != opener.ActionOpen {
		return
	}
	if out.Err == nil && a.store != nil && out.Item.ID != "" {
		if err := a.store.TouchItem(out.Item.ID, out.At); err != nil && !errors.Is(err, settings.ErrItemNotFound) {
			slog.Warn("[WARN-SETTINGS] failed to record last opened time", "id", out.Item.ID, "error", err)
		}
	}
	if a.journal == nil {
		return
	}
	entry := history.Entry{
		ItemID:   out.Item.ID,
		Path:     out.Item.Path,
		Kind:     string(out.Item.Kind),
		OpenedAt: out.At,
		OK:       out.Err == nil,
	}
	if out.Err != nil {
		entry.Error = out.Err.Error()
	}
	ctx, cancel := context.WithTimeout(context.Background(), historyWriteTimeout)
	defer cancel()
	if err := a.journal.Record(ctx, entry); err != nil {
		slog.Warn("[WARN-HISTORY] failed to record launch", "error", err)
	}
}
