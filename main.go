package main

import (
	"embed"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"quicklaunch/internal/autostart"
	"quicklaunch/internal/config"
	"quicklaunch/internal/ipc"
	"quicklaunch/internal/settings"
	"quicklaunch/internal/singleinstance"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	hidden, paths := parseLaunchArgs(os.Args[1:])

	app := NewApp(hidden)
	closeLog := app.bootstrap(config.DefaultPath())
	defer closeLog()

	// Single-instance check BEFORE any Wails/WebView initialization.
	if app.cfg.SingleInstance {
		lock, err := singleinstance.TryLock(singleinstance.DefaultName())
		if errors.Is(err, singleinstance.ErrAlreadyRunning) {
			slog.Info("[DEBUG-SINGLE] another instance is already running, forwarding request")
			if _, sendErr := ipc.Send("", forwardRequest(paths)); sendErr != nil {
				slog.Warn("[DEBUG-SINGLE] failed to signal existing instance", "error", sendErr)
			}
			return
		}
		if err != nil {
			slog.Warn("[DEBUG-SINGLE] lock failed, proceeding without single-instance guard", "error", err)
		}
		if lock != nil {
			defer func() {
				if releaseErr := lock.Release(); releaseErr != nil {
					slog.Warn("[DEBUG-SINGLE] lock release failed", "error", releaseErr)
				}
			}()
		}
	}

	if len(paths) > 0 {
		if _, err := app.AddPaths(paths); err != nil {
			slog.Warn("[WARN-SETTINGS] some command line paths were not added", "error", err)
		}
	}

	window := app.GetSettings().MainWindow
	err := wails.Run(&options.App{
		Title:       appName,
		Width:       window.Width,
		Height:      window.Height,
		MinWidth:    settings.MinWindowSide,
		MinHeight:   settings.MinWindowSide,
		StartHidden: hidden,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 24, G: 24, B: 27, A: 1},
		DragAndDrop: &options.DragAndDrop{
			EnableFileDrop: true,
		},
		OnStartup:     app.startup,
		OnBeforeClose: app.beforeClose,
		OnShutdown:    app.shutdown,
		Bind: []any{
			app,
		},
	})
	if err != nil {
		slog.Error("[ERROR-UI] wails run failed", "error", err)
	}
}

// parseLaunchArgs splits the command line into the login-item flag and the
// paths to add. Platform-injected flags (e.g. macOS -psn_*) are ignored.
func parseLaunchArgs(args []string) (hidden bool, paths []string) {
	for _, arg := range args {
		switch {
		case arg == autostart.StartHiddenArg:
			hidden = true
		case strings.HasPrefix(arg, "-"):
			slog.Debug("[DEBUG-CONFIG] ignoring launch flag", "flag", arg)
		case strings.TrimSpace(arg) != "":
			paths = append(paths, absIfExists(arg))
		}
	}
	return hidden, paths
}

// forwardRequest is what a second launch asks the running instance to do.
func forwardRequest(paths []string) ipc.Request {
	if len(paths) == 0 {
		return ipc.Request{Command: ipc.CommandActivate}
	}
	return ipc.Request{Command: ipc.CommandAdd, Args: paths}
}

// absIfExists makes filesystem arguments absolute so a running instance in
// another working directory resolves them the same way. Other text is kept.
func absIfExists(arg string) string {
	if _, err := os.Stat(arg); err != nil {
		return arg
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return arg
	}
	return abs
}
