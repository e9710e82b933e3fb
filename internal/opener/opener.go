package opener

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"quicklaunch/internal/items"
	"quicklaunch/internal/notify"
)

// Action names the operation an Outcome reports on.
type Action string

const (
	ActionOpen   Action = "open"
	ActionReveal Action = "reveal"
)

// ErrNotRevealable is reported when Reveal is asked for a URL or command.
var ErrNotRevealable = errors.New("only files and folders can be revealed")

// Outcome describes one dispatch. Err is nil when the OS accepted the launch.
type Outcome struct {
	Item   items.LauncherItem
	Action Action
	Err    error
	At     time.Time
}

// Opener dispatches launcher items to a Platform. Failures never propagate:
// each one is logged once and shown as a notification.
type Opener struct {
	platform Platform
	notifier notify.Notifier
	observer func(Outcome)
	stat     func(string) (fs.FileInfo, error)
	now      func() time.Time
}

// Option configures an Opener.
type Option func(*Opener)

// WithObserver registers fn to receive every Outcome after dispatch.
func WithObserver(fn func(Outcome)) Option {
	return func(o *Opener) { o.observer = fn }
}

// New builds an Opener. A nil notifier discards notifications.
func New(platform Platform, notifier notify.Notifier, opts ...Option) *Opener {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	o := &Opener{
		platform: platform,
		notifier: notifier,
		stat:     os.Stat,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open launches item according to its kind and returns once the OS has
// accepted or refused the launch. It never waits on the launched program.
func (o *Opener) Open(item items.LauncherItem) {
	err := o.dispatch(item)
	o.finish(item, ActionOpen, err)
}

// Reveal shows a file or folder in the file manager. Other kinds are ignored
// with a warning.
func (o *Opener) Reveal(item items.LauncherItem) {
	if !item.Kind.Revealable() {
		slog.Warn("[WARN-OPEN] reveal ignored for non-filesystem item", "kind", item.Kind, "path", item.Path)
		o.report(Outcome{Item: item, Action: ActionReveal, Err: ErrNotRevealable, At: o.now()})
		return
	}
	err := o.requireExisting(item.Path)
	if err == nil {
		err = o.platform.Reveal(item.Path)
	}
	o.finish(item, ActionReveal, err)
}

func (o *Opener) dispatch(item items.LauncherItem) error {
	switch item.Kind {
	case items.KindFile:
		if err := o.requireExisting(item.Path); err != nil {
			return err
		}
		return o.platform.OpenFile(item.Path)
	case items.KindFolder:
		if err := o.requireExisting(item.Path); err != nil {
			return err
		}
		return o.platform.OpenFolder(item.Path)
	case items.KindURL:
		return o.platform.OpenURL(items.LaunchURL(item.Path))
	case items.KindCommand:
		return o.platform.RunCommand(item.Path)
	default:
		return fmt.Errorf("unknown item kind %q", item.Kind)
	}
}

func (o *Opener) requireExisting(path string) error {
	if _, err := o.stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s no longer exists", path)
		}
		return err
	}
	return nil
}

func (o *Opener) finish(item items.LauncherItem, action Action, err error) {
	if err != nil {
		slog.Error("[ERROR-OPEN] failed to launch item",
			"action", action, "kind", item.Kind, "path", item.Path, "error", err)
		o.notifier.Notify("Could not "+string(action)+" "+item.Label(), err.Error())
	} else {
		slog.Debug("[DEBUG-OPEN] item launched", "action", action, "kind", item.Kind, "path", item.Path)
	}
	o.report(Outcome{Item: item, Action: action, Err: err, At: o.now()})
}

func (o *Opener) report(out Outcome) {
	if o.observer != nil {
		o.observer(out)
	}
}
