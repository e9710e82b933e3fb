package autostart

import (
	"bytes"
	"encoding/xml"
	"path/filepath"

	"quicklaunch/internal/fileutil"
)

// launchAgent manages ~/Library/LaunchAgents/<label>.plist.
type launchAgent struct {
	dir   string
	label string
}

func (a launchAgent) path() string {
	return filepath.Join(a.dir, a.label+".plist")
}

func (a launchAgent) enable(exe string) error {
	return fileutil.WriteAtomic(a.path(), launchAgentPlist(a.label, exe), 0o644)
}

func (a launchAgent) disable() error { return removeIfExists(a.path()) }

func (a launchAgent) enabled() (bool, error) { return fileExists(a.path()) }

func launchAgentPlist(label, exe string) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>`)
	xmlEscape(&buf, label)
	buf.WriteString(`</string>
    <key>ProgramArguments</key>
    <array>
        <string>`)
	xmlEscape(&buf, exe)
	buf.WriteString(`</string>
        <string>` + StartHiddenArg + `</string>
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>ProcessType</key>
    <string>Interactive</string>
</dict>
</plist>
`)
	return buf.Bytes()
}

func xmlEscape(buf *bytes.Buffer, s string) {
	// EscapeText only fails when the writer does; bytes.Buffer never does.
	_ = xml.EscapeText(buf, []byte(s))
}
