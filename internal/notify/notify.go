// Package notify surfaces transient, non-blocking messages to the user.
package notify

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/gen2brain/beeep"
)

// Notifier shows a transient message. Implementations never fail the caller.
type Notifier interface {
	Notify(title, message string)
}

// beeepNotifyFn is a test seam over the desktop toast call.
var beeepNotifyFn = func(title, message string) error {
	return beeep.Notify(title, message, "")
}

var setAppNameOnce sync.Once

// Desktop sends OS toasts through beeep and falls back to the log when the
// notification service is unavailable.
type Desktop struct{}

// NewDesktop returns a Desktop notifier labelled with appName.
func NewDesktop(appName string) Desktop {
	if name := strings.TrimSpace(appName); name != "" {
		setAppNameOnce.Do(func() { beeep.AppName = name })
	}
	return Desktop{}
}

// Notify implements Notifier.
func (Desktop) Notify(title, message string) {
	if err := beeepNotifyFn(title, message); err != nil {
		slog.Warn("[WARN-NOTIFY] desktop notification failed, logging instead",
			"error", err, "title", title, "message", message)
	}
}

// Nop discards notifications.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(string, string) {}

// New returns a Desktop notifier when enabled, otherwise Nop.
func New(enabled bool, appName string) Notifier {
	if !enabled {
		return Nop{}
	}
	return NewDesktop(appName)
}
