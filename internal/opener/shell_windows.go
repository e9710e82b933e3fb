//go:build windows

package opener

import (
	"golang.org/x/sys/windows"
)

// shellExecuteFn resolves target through the shell's file associations, the
// same primitive Explorer uses on double-click.
var shellExecuteFn = func(verb, target string) error {
	verbPtr, err := windows.UTF16PtrFromString(verb)
	if err != nil {
		return err
	}
	targetPtr, err := windows.UTF16PtrFromString(target)
	if err != nil {
		return err
	}
	return windows.ShellExecute(0, verbPtr, targetPtr, nil, nil, windows.SW_SHOWNORMAL)
}
