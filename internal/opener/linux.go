package opener

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	fileManagerBusName = "org.freedesktop.FileManager1"
	fileManagerPath    = "/org/freedesktop/FileManager1"
	showItemsMethod    = fileManagerBusName + ".ShowItems"
)

// terminalCandidate describes how a terminal emulator takes a command.
type terminalCandidate struct {
	name    string
	execArg string // flag that precedes the command argv; empty means none
}

// Probed in order after the configured override and $TERMINAL.
var linuxTerminals = []terminalCandidate{
	{name: "x-terminal-emulator", execArg: "-e"},
	{name: "gnome-terminal", execArg: "--"},
	{name: "konsole", execArg: "-e"},
	{name: "xfce4-terminal", execArg: "-x"},
	{name: "alacritty", execArg: "-e"},
	{name: "kitty"},
	{name: "xterm", execArg: "-e"},
}

// showItemsFn asks the desktop's file manager to select uris.
var showItemsFn = showItemsDBus

type linuxPlatform struct {
	terminal  string
	showItems func(uris []string) error
}

func (p *linuxPlatform) OpenFile(path string) error   { return startFn(exec.Command("xdg-open", path)) }
func (p *linuxPlatform) OpenFolder(path string) error { return startFn(exec.Command("xdg-open", path)) }
func (p *linuxPlatform) OpenURL(url string) error     { return openURLWith("xdg-open", url) }

// Reveal selects path through the FileManager1 D-Bus interface and degrades
// to opening the parent directory when no file manager implements it.
func (p *linuxPlatform) Reveal(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	uri := (&url.URL{Scheme: "file", Path: abs}).String()
	err = p.showItems([]string{uri})
	if err == nil {
		return nil
	}
	slog.Debug("[DEBUG-OPEN] FileManager1.ShowItems unavailable, opening parent directory", "error", err)
	return startFn(exec.Command("xdg-open", filepath.Dir(abs)))
}

// RunCommand runs text in the first available terminal emulator. The shell
// stays open afterwards, mirroring cmd.exe /K. Without any terminal the
// command runs headless.
func (p *linuxPlatform) RunCommand(text string) error {
	term, ok := p.findTerminal()
	if !ok {
		slog.Warn("[WARN-OPEN] no terminal emulator found, running command without a terminal", "command", text)
		return runHeadless(text)
	}
	return startFn(exec.Command(term.name, terminalArgs(term, text)...))
}

func (p *linuxPlatform) findTerminal() (terminalCandidate, bool) {
	var candidates []terminalCandidate
	for _, name := range []string{p.terminal, os.Getenv("TERMINAL")} {
		if name = strings.TrimSpace(name); name != "" {
			candidates = append(candidates, knownTerminal(name))
		}
	}
	candidates = append(candidates, linuxTerminals...)
	for _, c := range candidates {
		if path, err := lookPathFn(c.name); err == nil {
			c.name = path
			return c, true
		}
	}
	return terminalCandidate{}, false
}

// knownTerminal returns the candidate matching name's base, or a generic
// "-e" terminal for unknown emulators.
func knownTerminal(name string) terminalCandidate {
	base := filepath.Base(name)
	for _, c := range linuxTerminals {
		if c.name == base {
			return terminalCandidate{name: name, execArg: c.execArg}
		}
	}
	return terminalCandidate{name: name, execArg: "-e"}
}

func terminalArgs(term terminalCandidate, text string) []string {
	script := text + `; exec "${SHELL:-/bin/sh}"`
	args := make([]string, 0, 4)
	if term.execArg != "" {
		args = append(args, term.execArg)
	}
	return append(args, "/bin/sh", "-c", script)
}

func showItemsDBus(uris []string) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("connect session bus: %w", err)
	}
	defer conn.Close()
	obj := conn.Object(fileManagerBusName, dbus.ObjectPath(fileManagerPath))
	if call := obj.Call(showItemsMethod, 0, uris, ""); call.Err != nil {
		return fmt.Errorf("%s: %w", showItemsMethod, call.Err)
	}
	return nil
}
