package autostart

import (
	"path/filepath"
	"strings"

	"quicklaunch/internal/fileutil"
)

// xdgAutostart manages $XDG_CONFIG_HOME/autostart/<id>.desktop.
type xdgAutostart struct {
	dir string
	id  string
}

func (x xdgAutostart) path() string {
	return filepath.Join(x.dir, x.id+".desktop")
}

func (x xdgAutostart) enable(exe string) error {
	return fileutil.WriteAtomic(x.path(), desktopEntry(exe), 0o644)
}

func (x xdgAutostart) disable() error { return removeIfExists(x.path()) }

func (x xdgAutostart) enabled() (bool, error) { return fileExists(x.path()) }

func desktopEntry(exe string) []byte {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Name=Quick Launch\n")
	b.WriteString("Comment=Keyboard launcher for files, folders, URLs and commands\n")
	b.WriteString("Exec=" + desktopExecQuote(exe) + " " + StartHiddenArg + "\n")
	b.WriteString("Terminal=false\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	return []byte(b.String())
}

// desktopExecQuote quotes an Exec argument per the Desktop Entry spec.
func desktopExecQuote(arg string) string {
	if !strings.ContainsAny(arg, " \t\n\"'\\><~|&;$*?#()`=%") {
		return arg
	}
	r := strings.NewReplacer(`\`, `\\\\`, `"`, `\\"`, "`", "\\\\`", `$`, `\\$`, `%`, `%%`)
	return `"` + r.Replace(arg) + `"`
}
