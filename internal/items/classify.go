package items

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

var (
	uriSchemePattern  = regexp.MustCompile(`(?i)^[a-z][a-z0-9+.-]*://`)
	bareDomainPattern = regexp.MustCompile(`(?i)^([a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,}(:\d{1,5})?(/.*)?$`)
)

// Classifier maps raw item text to a Kind.
// GOOS selects the platform rules; Stat probes the filesystem read-only.
type Classifier struct {
	GOOS string
	Stat func(name string) (fs.FileInfo, error)
}

// DefaultClassifier classifies for the running platform.
var DefaultClassifier = Classifier{GOOS: runtime.GOOS, Stat: os.Stat}

// Classify classifies path with DefaultClassifier.
func Classify(path string) Kind {
	return DefaultClassifier.Classify(path)
}

// Classify never fails: unrecognized input is treated as a command.
// A filesystem entry takes precedence over URL-shaped text.
func (c Classifier) Classify(path string) Kind {
	text := strings.TrimSpace(path)
	if text == "" {
		return KindCommand
	}

	stat := c.Stat
	if stat == nil {
		stat = os.Stat
	}
	if info, err := stat(text); err == nil {
		switch {
		case info.IsDir():
			return KindFolder
		case info.Mode().IsRegular():
			if c.GOOS == "windows" && strings.EqualFold(filepath.Ext(text), ".bat") {
				return KindCommand
			}
			return KindFile
		}
	}

	if IsURL(text) {
		return KindURL
	}
	return KindCommand
}

// IsURL reports whether text has a URI scheme or looks like a bare domain.
func IsURL(text string) bool {
	return uriSchemePattern.MatchString(text) || bareDomainPattern.MatchString(text)
}

// LaunchURL returns the address to hand to the OS for a url item. A bare
// domain gets an https scheme so handlers do not read it as a relative file;
// text that already carries a scheme is returned unchanged.
func LaunchURL(text string) string {
	trimmed := strings.TrimSpace(text)
	if uriSchemePattern.MatchString(trimmed) || !bareDomainPattern.MatchString(trimmed) {
		return trimmed
	}
	return "https://" + trimmed
}
