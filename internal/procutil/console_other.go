//go:build !windows

package procutil

// ConsoleUTF8 is a no-op outside Windows; terminals there are UTF-8 already.
func ConsoleUTF8() {}
