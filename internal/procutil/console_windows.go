//go:build windows

package procutil

import "golang.org/x/sys/windows"

const codePageUTF8 = 65001

// ConsoleUTF8 switches the attached console to UTF-8 so paths and item names
// print intact. Failures (no console attached) are ignored.
func ConsoleUTF8() {
	_ = windows.SetConsoleOutputCP(codePageUTF8)
	_ = windows.SetConsoleCP(codePageUTF8)
}
