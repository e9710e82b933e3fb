package main

import (
	"context"
	"log/slog"

	"quicklaunch/internal/settings"
)

// bringWindowToFront shows and raises the window. Used when a second
// instance asks this one to activate.
func (a *App) bringWindowToFront() {
	ctx := a.runtimeContext()
	if ctx == nil {
		slog.Warn("[WARN-UI] bringWindowToFront dropped because runtime context is nil")
		return
	}
	a.raiseWindow(ctx)
	a.setWindowVisible(true)
}

func (a *App) raiseWindow(ctx context.Context) {
	runtimeWindowShowFn(ctx)
	runtimeWindowUnminimiseFn(ctx)
	runtimeWindowSetAlwaysOnTopFn(ctx, true)
	runtimeWindowSetAlwaysOnTopFn(ctx, false)
}

func (a *App) setWindowVisible(visible bool) {
	a.windowMu.Lock()
	a.windowVisible = visible
	a.windowMu.Unlock()
}

func (a *App) isWindowVisible() bool {
	a.windowMu.Lock()
	defer a.windowMu.Unlock()
	return a.windowVisible
}

// toggleWindow is the hotkey action: a hidden or minimised window is shown
// and raised, a visible one is hidden. It runs on the ui loop.
func (a *App) toggleWindow() {
	if !a.windowToggling.CompareAndSwap(false, true) {
		slog.Debug("[hotkey] toggle already in progress, skipping")
		return
	}
	defer a.windowToggling.Store(false)

	ctx := a.runtimeContext()
	if ctx == nil {
		return
	}

	// No Wails runtime call is made while windowMu is held.
	isMinimised := runtimeWindowIsMinimisedFn(ctx)
	currentlyVisible := a.isWindowVisible() && !isMinimised

	if currentlyVisible {
		runtimeWindowHideFn(ctx)
	} else {
		a.raiseWindow(ctx)
	}
	a.setWindowVisible(!currentlyVisible)
}

// restoreWindowPosition moves the window to the saved position, if any.
// Size is applied through the Wails options before the window exists.
func (a *App) restoreWindowPosition(ctx context.Context, w settings.WindowSettings) {
	if ctx == nil || w.X == nil || w.Y == nil {
		return
	}
	runtimeWindowSetPositionFn(ctx, *w.X, *w.Y)
}

// beforeClose persists the window geometry. It never vetoes the close.
func (a *App) beforeClose(ctx context.Context) bool {
	if a.store == nil || ctx == nil {
		return false
	}
	width, height := runtimeWindowGetSizeFn(ctx)
	x, y := runtimeWindowGetPositionFn(ctx)
	_, err := a.store.UpdateSettings(func(s *settings.Settings) {
		s.MainWindow.Width = width
		s.MainWindow.Height = height
		s.MainWindow.X = &x
		s.MainWindow.Y = &y
	})
	if err != nil {
		slog.Warn("[WARN-SETTINGS] failed to save window geometry", "error", err)
	}
	return false
}
