package main

import (
	"context"
	"fmt"
	"time"

	"quicklaunch/internal/history"
	"quicklaunch/internal/settings"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
	historyQueryTimeout = 3 * time.Second
)

// GetSettings returns the current user settings.
func (a *App) GetSettings() settings.Settings {
	store, err := a.requireStore()
	if err != nil {
		return settings.Defaults()
	}
	return store.Settings()
}

// UpdateSettings saves the user-editable settings. Window geometry is owned
// by the backend and is kept as stored. Hotkey and autostart changes take
// effect through the store subscriber.
func (a *App) UpdateSettings(next settings.Settings) (settings.Settings, error) {
	store, err := a.requireStore()
	if err != nil {
		return settings.Defaults(), err
	}
	return store.UpdateSettings(func(s *settings.Settings) {
		s.Theme = next.Theme
		s.Language = next.Language
		s.Hotkey = next.Hotkey
		s.AutoLaunch = next.AutoLaunch
	})
}

// GetActiveHotkey returns the registered shortcut, or "" when none is live.
func (a *App) GetActiveHotkey() string {
	if a.hotkeys == nil {
		return ""
	}
	return a.hotkeys.ActiveBinding()
}

// GetLaunchHistory returns up to limit journal entries, newest first.
// limit <= 0 means the default page size.
func (a *App) GetLaunchHistory(limit int) ([]history.Entry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)
	ctx, cancel := context.WithTimeout(context.Background(), historyQueryTimeout)
	defer cancel()
	entries, err := a.journal.Recent(ctx, limit)
	if err != nil {
		return []history.Entry{}, fmt.Errorf("load launch history: %w", err)
	}
	return entries, nil
}
