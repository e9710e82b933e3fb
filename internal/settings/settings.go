// Package settings persists launcher items and user preferences as JSON in
// the data directory and notifies observers when either changes.
package settings

import (
	"log/slog"
	"strings"

	"quicklaunch/internal/hotkeys"
)

// Theme is the UI colour scheme.
type Theme string

const (
	ThemeSystem Theme = "system"
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
)

const (
	defaultLanguage     = "system"
	defaultWindowWidth  = 400
	defaultWindowHeight = 600
	// MinWindowSide is the smallest accepted window width or height.
	MinWindowSide = 200
)

// HotkeySettings holds the global shortcut.
type HotkeySettings struct {
	Enabled  bool   `json:"enabled"`
	Shortcut string `json:"shortcut"`
}

// AutoLaunchSettings controls start at login.
type AutoLaunchSettings struct {
	Enabled bool `json:"enabled"`
}

// WindowSettings is the remembered main window geometry. X and Y are nil
// until the window has been moved.
type WindowSettings struct {
	Width  int  `json:"width"`
	Height int  `json:"height"`
	X      *int `json:"x"`
	Y      *int `json:"y"`
}

// Settings is the content of settings.json.
type Settings struct {
	Theme      Theme              `json:"theme"`
	Language   string             `json:"language"`
	Hotkey     HotkeySettings     `json:"hotkey"`
	AutoLaunch AutoLaunchSettings `json:"autoLaunch"`
	MainWindow WindowSettings     `json:"mainWindow"`
}

// Defaults returns the settings used when settings.json is missing.
func Defaults() Settings {
	return Settings{
		Theme:    ThemeSystem,
		Language: defaultLanguage,
		Hotkey: HotkeySettings{
			Enabled:  true,
			Shortcut: hotkeys.DefaultShortcut,
		},
		MainWindow: WindowSettings{
			Width:  defaultWindowWidth,
			Height: defaultWindowHeight,
		},
	}
}

// Clone returns a copy that shares no pointers with s.
func (s Settings) Clone() Settings {
	out := s
	if s.MainWindow.X != nil {
		x := *s.MainWindow.X
		out.MainWindow.X = &x
	}
	if s.MainWindow.Y != nil {
		y := *s.MainWindow.Y
		out.MainWindow.Y = &y
	}
	return out
}

// normalize repairs out-of-range values in place. MUTATES s.
func (s *Settings) normalize() {
	switch theme := Theme(strings.ToLower(strings.TrimSpace(string(s.Theme)))); theme {
	case ThemeSystem, ThemeLight, ThemeDark:
		s.Theme = theme
	default:
		if s.Theme != "" {
			slog.Warn("[WARN-SETTINGS] unknown theme, using system", "theme", s.Theme)
		}
		s.Theme = ThemeSystem
	}

	s.Language = strings.TrimSpace(s.Language)
	if s.Language == "" {
		s.Language = defaultLanguage
	}

	s.Hotkey.Shortcut = strings.TrimSpace(s.Hotkey.Shortcut)
	if s.Hotkey.Shortcut == "" {
		s.Hotkey.Shortcut = hotkeys.DefaultShortcut
	}
	if binding, err := hotkeys.ParseBinding(s.Hotkey.Shortcut); err != nil {
		slog.Warn("[WARN-SETTINGS] invalid hotkey shortcut, using default",
			"shortcut", s.Hotkey.Shortcut, "error", err)
		s.Hotkey.Shortcut = hotkeys.DefaultShortcut
	} else {
		s.Hotkey.Shortcut = binding.Normalized()
	}

	if s.MainWindow.Width < MinWindowSide {
		s.MainWindow.Width = defaultWindowWidth
	}
	if s.MainWindow.Height < MinWindowSide {
		s.MainWindow.Height = defaultWindowHeight
	}
}

// Change describes what a store mutation touched.
type Change struct {
	Items    bool
	Settings bool
	// HotkeyChanged is set when the shortcut or its enabled flag differs
	// from before the mutation.
	HotkeyChanged bool
	// AutoLaunchChanged is set when autoLaunch.enabled flipped.
	AutoLaunchChanged bool
	// External is set when the change came from an edit on disk.
	External bool
}

func settingsChange(before, after Settings, external bool) Change {
	return Change{
		Settings:          true,
		HotkeyChanged:     before.Hotkey != after.Hotkey,
		AutoLaunchChanged: before.AutoLaunch != after.AutoLaunch,
		External:          external,
	}
}
