package main

import (
	"fmt"
	"log/slog"
	"strings"

	"quicklaunch/internal/ipc"
	"quicklaunch/internal/items"
)

// executeIPC handles a request from a second launch or from qlctl.
func (a *App) executeIPC(req ipc.Request) ipc.Response {
	slog.Debug("[ipc] request", "command", req.Command, "args", len(req.Args))
	switch req.Command {
	case ipc.CommandActivate:
		a.postToUI(a.bringWindowToFront)
		return ipc.Response{OK: true}
	case ipc.CommandOpen:
		return a.ipcOpen(req.Args)
	case ipc.CommandAdd:
		if len(req.Args) == 0 {
			return ipc.Errorf("add requires at least one path")
		}
		added, err := a.AddPaths(req.Args)
		if err != nil {
			return ipc.Response{OK: len(added) > 0, Message: fmt.Sprintf("added %d", len(added)), Error: err.Error()}
		}
		return ipc.Response{OK: true, Message: fmt.Sprintf("added %d", len(added))}
	default:
		return ipc.Errorf("unknown command %q", req.Command)
	}
}

// ipcOpen opens each argument: a stored item id, or else an ad hoc path that
// is classified on the spot and not persisted.
func (a *App) ipcOpen(args []string) ipc.Response {
	if len(args) == 0 {
		return ipc.Errorf("open requires an item id or path")
	}
	if a.opener == nil {
		return ipc.Errorf("opener is unavailable")
	}
	opened := 0
	var failed []string
	for _, arg := range args {
		item, err := a.requireItem(arg)
		if err != nil {
			item, err = items.New(arg, "", "")
			item.ID = ""
		}
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", arg, err))
			continue
		}
		a.opener.Open(item)
		opened++
	}
	resp := ipc.Response{OK: len(failed) == 0, Message: fmt.Sprintf("opened %d", opened)}
	if len(failed) > 0 {
		resp.Error = strings.Join(failed, "; ")
	}
	return resp
}

// postToUI runs fn on the ui loop, or inline when the loop is not running.
func (a *App) postToUI(fn func()) {
	if a.loop == nil || !a.loop.Post(fn) {
		fn()
	}
}
