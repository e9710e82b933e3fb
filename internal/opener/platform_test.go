package opener

import (
	"errors"
	"net/url"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// stubStart captures commands instead of launching them.
func stubStart(t *testing.T) *[]*exec.Cmd {
	t.Helper()
	var started []*exec.Cmd
	orig := startFn
	startFn = func(cmd *exec.Cmd) error {
		started = append(started, cmd)
		return nil
	}
	t.Cleanup(func() { startFn = orig })
	return &started
}

func stubLookPath(t *testing.T, available ...string) {
	t.Helper()
	orig := lookPathFn
	lookPathFn = func(name string) (string, error) {
		for _, a := range available {
			if a == name {
				return "/usr/bin/" + filepath.Base(name), nil
			}
		}
		return "", exec.ErrNotFound
	}
	t.Cleanup(func() { lookPathFn = orig })
}

func TestForOS(t *testing.T) {
	tests := []struct {
		goos string
		want any
	}{
		{goos: "windows", want: &windowsPlatform{}},
		{goos: "darwin", want: &darwinPlatform{}},
		{goos: "linux", want: &linuxPlatform{}},
		{goos: "freebsd", want: &linuxPlatform{}},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			got := ForOS(tt.goos, Options{Terminal: "kitty"})
			if reflect.TypeOf(got) != reflect.TypeOf(tt.want) {
				t.Fatalf("ForOS(%q) = %T, want %T", tt.goos, got, tt.want)
			}
			if lp, ok := got.(*linuxPlatform); ok && lp.terminal != "kitty" {
				t.Fatalf("terminal override = %q", lp.terminal)
			}
		})
	}
}

func TestWindowsCommandArgs(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{text: "echo Hello", want: []string{"/K", "echo Hello"}},
		{text: "  ping localhost  ", want: []string{"/K", "ping localhost"}},
		{text: "/C dir", want: []string{"/C", "dir"}},
		{text: "/k title x", want: []string{"/k", "title x"}},
		{text: "/K", want: []string{"/K"}},
		{text: "/Cdir", want: []string{"/K", "/Cdir"}},
		{text: "/S echo", want: []string{"/K", "/S echo"}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := windowsCommandArgs(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("windowsCommandArgs(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestWindowsPlatform(t *testing.T) {
	started := stubStart(t)
	var executed []string
	p := &windowsPlatform{shellExecute: func(verb, target string) error {
		executed = append(executed, verb+" "+target)
		return nil
	}}

	if err := p.RunCommand("echo Hello"); err != nil {
		t.Fatalf("RunCommand: %v", err)
	}
	if err := p.Reveal(`C:\Users\me\notes.txt`); err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	for _, target := range []string{`C:\a.txt`, `C:\dir`, "https://example.com"} {
		if err := p.OpenFile(target); err != nil {
			t.Fatalf("OpenFile(%q): %v", target, err)
		}
	}

	if len(*started) != 2 {
		t.Fatalf("started %d processes, want 2", len(*started))
	}
	if got, want := (*started)[0].Args, []string{"cmd.exe", "/K", "echo Hello"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("command args = %v, want %v", got, want)
	}
	if got, want := (*started)[1].Args, []string{"explorer.exe", `/select,C:\Users\me\notes.txt`}; !reflect.DeepEqual(got, want) {
		t.Fatalf("reveal args = %v, want %v", got, want)
	}
	if len(executed) != 3 || executed[2] != "open https://example.com" {
		t.Fatalf("ShellExecute calls = %v", executed)
	}
}

func TestWindowsPlatformShellExecuteError(t *testing.T) {
	p := &windowsPlatform{shellExecute: func(string, string) error { return errors.New("no association") }}
	err := p.OpenFile(`C:\a.xyz`)
	if err == nil || !strings.Contains(err.Error(), "no association") {
		t.Fatalf("err = %v", err)
	}
}

func TestDarwinPlatform(t *testing.T) {
	started := stubStart(t)
	stubLookPath(t, "osascript")

	p := darwinPlatform{}
	_ = p.OpenFile("/Users/me/a.txt")
	_ = p.Reveal("/Users/me/a.txt")
	_ = p.RunCommand(`echo "hi"`)

	if len(*started) != 3 {
		t.Fatalf("started %d processes, want 3", len(*started))
	}
	if got, want := (*started)[0].Args, []string{"open", "/Users/me/a.txt"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("open args = %v", got)
	}
	if got, want := (*started)[1].Args, []string{"open", "-R", "/Users/me/a.txt"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("reveal args = %v", got)
	}
	script := (*started)[2].Args[2]
	if want := `tell application "Terminal" to do script "echo \"hi\""`; script != want {
		t.Fatalf("script = %q, want %q", script, want)
	}
}

func TestDarwinPlatformHeadlessWithoutOsascript(t *testing.T) {
	started := stubStart(t)
	stubLookPath(t)

	if err := (darwinPlatform{}).RunCommand("touch /tmp/x"); err != nil {
		t.Fatalf("RunCommand: %v", err)
	}
	if got, want := (*started)[0].Args, []string{"/bin/sh", "-c", "touch /tmp/x"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("args = %v, want %v", got, want)
	}
}

func TestLinuxFindTerminal(t *testing.T) {
	tests := []struct {
		name      string
		override  string
		envTerm   string
		available []string
		wantName  string
		wantArg   string
		wantFound bool
	}{
		{name: "override wins", override: "kitty", envTerm: "xterm", available: []string{"kitty", "xterm"}, wantName: "/usr/bin/kitty", wantFound: true},
		{name: "env next", envTerm: "konsole", available: []string{"konsole", "xterm"}, wantName: "/usr/bin/konsole", wantArg: "-e", wantFound: true},
		{name: "unknown override gets -e", override: "myterm", available: []string{"myterm"}, wantName: "/usr/bin/myterm", wantArg: "-e", wantFound: true},
		{name: "list order", available: []string{"xterm", "gnome-terminal"}, wantName: "/usr/bin/gnome-terminal", wantArg: "--", wantFound: true},
		{name: "missing override falls through", override: "nope", available: []string{"xterm"}, wantName: "/usr/bin/xterm", wantArg: "-e", wantFound: true},
		{name: "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TERMINAL", tt.envTerm)
			stubLookPath(t, tt.available...)
			p := &linuxPlatform{terminal: tt.override}

			got, ok := p.findTerminal()
			if ok != tt.wantFound {
				t.Fatalf("found = %v, want %v", ok, tt.wantFound)
			}
			if got.name != tt.wantName || got.execArg != tt.wantArg {
				t.Fatalf("terminal = %+v, want name=%q arg=%q", got, tt.wantName, tt.wantArg)
			}
		})
	}
}

func TestLinuxRunCommand(t *testing.T) {
	t.Setenv("TERMINAL", "")
	started := stubStart(t)
	stubLookPath(t, "gnome-terminal")

	if err := (&linuxPlatform{}).RunCommand("htop"); err != nil {
		t.Fatalf("RunCommand: %v", err)
	}
	want := []string{"/usr/bin/gnome-terminal", "--", "/bin/sh", "-c", `htop; exec "${SHELL:-/bin/sh}"`}
	if got := (*started)[0].Args; !reflect.DeepEqual(got, want) {
		t.Fatalf("args = %v, want %v", got, want)
	}
}

func TestLinuxRunCommandHeadless(t *testing.T) {
	t.Setenv("TERMINAL", "")
	started := stubStart(t)
	stubLookPath(t)

	if err := (&linuxPlatform{}).RunCommand("notify-send hi"); err != nil {
		t.Fatalf("RunCommand: %v", err)
	}
	if got, want := (*started)[0].Args, []string{"/bin/sh", "-c", "notify-send hi"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("args = %v, want %v", got, want)
	}
}

func TestLinuxReveal(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a.txt")
	wantURI := (&url.URL{Scheme: "file", Path: target}).String()

	t.Run("file manager", func(t *testing.T) {
		started := stubStart(t)
		var got []string
		p := &linuxPlatform{showItems: func(uris []string) error {
			got = uris
			return nil
		}}
		if err := p.Reveal(target); err != nil {
			t.Fatalf("Reveal: %v", err)
		}
		if len(got) != 1 || got[0] != wantURI {
			t.Fatalf("uris = %v, want [%s]", got, wantURI)
		}
		if len(*started) != 0 {
			t.Fatalf("unexpected fallback launch: %v", (*started)[0].Args)
		}
	})

	t.Run("fallback to parent", func(t *testing.T) {
		started := stubStart(t)
		p := &linuxPlatform{showItems: func([]string) error { return errors.New("no bus") }}
		if err := p.Reveal(target); err != nil {
			t.Fatalf("Reveal: %v", err)
		}
		if got, want := (*started)[0].Args, []string{"xdg-open", dir}; !reflect.DeepEqual(got, want) {
			t.Fatalf("args = %v, want %v", got, want)
		}
	})
}

func TestOpenURLStartsDesktopHandler(t *testing.T) {
	tests := []struct {
		name     string
		platform Platform
		handler  string
	}{
		{name: "linux", platform: &linuxPlatform{}, handler: "xdg-open"},
		{name: "darwin", platform: darwinPlatform{}, handler: "open"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			started := stubStart(t)
			stubLookPath(t, tt.handler)
			stubBrowser(t)

			if err := tt.platform.OpenURL("https://example.com"); err != nil {
				t.Fatalf("OpenURL: %v", err)
			}
			if len(*started) != 1 {
				t.Fatalf("started %d processes, want 1", len(*started))
			}
			if got, want := (*started)[0].Args, []string{tt.handler, "https://example.com"}; !reflect.DeepEqual(got, want) {
				t.Fatalf("args = %v, want %v", got, want)
			}
		})
	}
}

func TestOpenURLFallsBackToBrowserWithoutHandler(t *testing.T) {
	started := stubStart(t)
	stubLookPath(t)
	opened := stubBrowser(t)

	if err := (&linuxPlatform{}).OpenURL("https://example.com"); err != nil {
		t.Fatalf("OpenURL: %v", err)
	}
	if len(*started) != 0 {
		t.Fatalf("started %d processes, want 0", len(*started))
	}
	if !reflect.DeepEqual(*opened, []string{"https://example.com"}) {
		t.Fatalf("browser opened %v", *opened)
	}
}

func stubBrowser(t *testing.T) *[]string {
	t.Helper()
	var opened []string
	orig := browserOpenFn
	browserOpenFn = func(u string) error {
		opened = append(opened, u)
		return nil
	}
	t.Cleanup(func() { browserOpenFn = orig })
	return &opened
}
