// Package procutil configures child processes the launcher starts and never
// waits on. Detach decouples a child from the launcher's session or console
// group. NewConsole, SetCommandLine and ConsoleUTF8 are Windows-only knobs and
// no-ops elsewhere.
package procutil
