//go:build !windows

package ipc

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

func defaultAddressFor(username string) string {
	return filepath.Join(os.TempDir(), "quicklaunch-"+username+".sock")
}

func validAddress(addr string) bool {
	return filepath.IsAbs(addr) && strings.HasSuffix(addr, ".sock")
}

// listen binds a unix socket readable only by the current user. A socket file
// left behind by a crashed instance is removed when nothing answers on it.
func listen(path string) (net.Listener, error) {
	if _, err := os.Lstat(path); err == nil {
		if conn, dialErr := net.DialTimeout("unix", path, 200*time.Millisecond); dialErr == nil {
			conn.Close()
			return nil, fmt.Errorf("socket %s is in use", path)
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale socket: %w", err)
		}
		slog.Debug("[ipc] removed stale socket", "path", path)
	}
	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}
	return listener, nil
}

func dial(path string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("unix", path, timeout)
}
