//go:build windows

package ipc

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/user"
	"regexp"
	"strings"
	"time"

	"github.com/Microsoft/go-winio"
)

const defaultPipePrefix = `\\.\pipe\quicklaunch-`

var pipeNamePattern = regexp.MustCompile(`(?i)^\\\\\.\\pipe\\quicklaunch-[a-z0-9._-]{1,128}$`)

func defaultAddressFor(username string) string {
	return defaultPipePrefix + username
}

func validAddress(addr string) bool {
	return pipeNamePattern.MatchString(addr)
}

// listen creates a Named Pipe listener restricted to the current user. The
// DACL grants full access only to SYSTEM and the current user's SID.
func listen(pipeName string) (net.Listener, error) {
	securityDescriptor, err := pipeSecurityDescriptor()
	if err != nil {
		return nil, err
	}
	return winio.ListenPipe(pipeName, &winio.PipeConfig{
		SecurityDescriptor: securityDescriptor,
		MessageMode:        false,
		InputBufferSize:    int32(maxRequestBytes),
		OutputBufferSize:   int32(maxResponseBytes),
	})
}

func dial(pipeName string, timeout time.Duration) (net.Conn, error) {
	conn, err := winio.DialPipe(pipeName, &timeout)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, winio.ErrTimeout) {
			return nil, fmt.Errorf("%w: %w", errNoListener, err)
		}
		return nil, err
	}
	return conn, nil
}

var validSIDPattern = regexp.MustCompile(`^S-1(-\d+)+$`)

func pipeSecurityDescriptor() (string, error) {
	current, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("resolve current user: %w", err)
	}
	sid := strings.TrimSpace(current.Uid)
	if sid == "" {
		return "", errors.New("current user SID is unavailable")
	}
	if !validSIDPattern.MatchString(sid) {
		return "", fmt.Errorf("current user SID has unexpected format: %s", sid)
	}
	// SDDL: D:P = protected DACL (no inheritance)
	// (A;;GA;;;SY) = full access for SYSTEM
	// (A;;GA;;;%s) = full access for current user SID
	return fmt.Sprintf("D:P(A;;GA;;;SY)(A;;GA;;;%s)", sid), nil
}
