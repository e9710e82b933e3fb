package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"quicklaunch/internal/config"
	"quicklaunch/internal/sessionlog"
)

// logEntryEvent carries one warn+ record to the frontend.
const logEntryEvent = "app:log-entry"

// logTeeLevel is the lowest level mirrored into the log ring.
const logTeeLevel = slog.LevelWarn

var openLogFileFn = func(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

// configureLogging installs the process-wide slog handler for cfg and tees
// warn+ records into the app's log ring. The returned func closes the log file.
func (a *App) configureLogging(cfg config.Config) func() {
	var (
		out     io.Writer = os.Stderr
		logFile *os.File
	)
	if cfg.LogFile != "" {
		f, err := openLogFileFn(cfg.LogFile)
		if err != nil {
			// slog is not configured yet; report straight to stderr.
			fmt.Fprintf(os.Stderr, "[WARN-CONFIG] log_file unavailable, logging to stderr: %v\n", err)
		} else {
			out = f
			logFile = f
		}
	}

	base := slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.Level()})
	slog.SetDefault(slog.New(sessionlog.NewTeeHandler(base, logTeeLevel, a.recordLogEntry)))

	return func() {
		if logFile == nil {
			return
		}
		if err := logFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN-CONFIG] failed to close log file: %v\n", err)
		}
	}
}

// recordLogEntry is the TeeHandler sink. It must not log through slog: the
// handler calls back into it.
func (a *App) recordLogEntry(e sessionlog.Entry) {
	a.logRing.Add(e)
	if ctx := a.runtimeContext(); ctx != nil {
		runtimeEventsEmitFn(ctx, logEntryEvent, e)
	}
}

// GetLogEntries returns the buffered warn+ log entries, oldest first.
// Wails-bound: the frontend fetches this once on mount and then follows
// app:log-entry events.
func (a *App) GetLogEntries() []sessionlog.Entry {
	return a.logRing.Entries()
}
