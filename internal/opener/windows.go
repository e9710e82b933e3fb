package opener

import (
	"fmt"
	"os/exec"
	"strings"

	"quicklaunch/internal/procutil"
)

type windowsPlatform struct {
	shellExecute func(verb, target string) error
}

func (p *windowsPlatform) OpenFile(path string) error   { return p.open(path) }
func (p *windowsPlatform) OpenFolder(path string) error { return p.open(path) }
func (p *windowsPlatform) OpenURL(url string) error     { return p.open(url) }

func (p *windowsPlatform) open(target string) error {
	if err := p.shellExecute("open", target); err != nil {
		return fmt.Errorf("ShellExecute %q: %w", target, err)
	}
	return nil
}

// RunCommand opens a new console running text through cmd.exe.
func (p *windowsPlatform) RunCommand(text string) error {
	args := windowsCommandArgs(text)
	cmd := exec.Command("cmd.exe")
	cmd.Args = append([]string{"cmd.exe"}, args...)
	procutil.SetCommandLine(cmd, "cmd.exe "+strings.Join(args, " "))
	procutil.NewConsole(cmd)
	return startFn(cmd)
}

// Reveal opens Explorer with path selected.
func (p *windowsPlatform) Reveal(path string) error {
	arg := "/select," + path
	cmd := exec.Command("explorer.exe")
	cmd.Args = []string{"explorer.exe", arg}
	procutil.SetCommandLine(cmd, `explorer.exe /select,"`+path+`"`)
	return startFn(cmd)
}

// windowsCommandArgs keeps the console open with /K unless the text already
// carries its own /C or /K switch.
func windowsCommandArgs(text string) []string {
	trimmed := strings.TrimSpace(text)
	if hasCmdSwitch(trimmed) {
		if rest := strings.TrimSpace(trimmed[2:]); rest != "" {
			return []string{trimmed[:2], rest}
		}
		return []string{trimmed[:2]}
	}
	return []string{"/K", trimmed}
}

func hasCmdSwitch(text string) bool {
	if len(text) < 2 || text[0] != '/' {
		return false
	}
	switch text[1] {
	case 'c', 'C', 'k', 'K':
	default:
		return false
	}
	return len(text) == 2 || text[2] == ' ' || text[2] == '\t'
}
