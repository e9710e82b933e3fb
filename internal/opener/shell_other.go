//go:build !windows

package opener

import "errors"

var shellExecuteFn = func(string, string) error {
	return errors.New("ShellExecute is only available on Windows")
}
