//go:build !windows

package ipc

import (
	"os"
	"path/filepath"
	"testing"
)

func TestUnixSocketRoundTrip(t *testing.T) {
	dir, err := os.MkdirTemp("", "ql")
	if err != nil {
		t.Fatalf("MkdirTemp error = %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "t.sock")

	// A stale socket file from a crashed instance must not block Start.
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write stale socket: %v", err)
	}

	srv := NewServer(path, ExecutorFunc(func(req Request) Response {
		return Response{OK: true, Message: req.Command}
	}))
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { _ = srv.Stop() })

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat socket: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("socket perm = %o, want 600", perm)
	}

	resp, err := Send(path, Request{Command: CommandActivate})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !resp.OK || resp.Message != CommandActivate {
		t.Fatalf("Send() = %+v", resp)
	}

	if _, err := listen(path); err == nil {
		t.Fatal("listen() on a live socket expected error")
	}
}

func TestUnixDialWithoutServer(t *testing.T) {
	_, err := Send(filepath.Join(t.TempDir(), "none.sock"), Request{Command: CommandActivate})
	if !IsConnectionError(err) {
		t.Fatalf("Send() error = %v, want connection error", err)
	}
}

func TestValidAddress(t *testing.T) {
	if !validAddress("/tmp/x.sock") {
		t.Fatal("validAddress(/tmp/x.sock) = false")
	}
	if validAddress("x.sock") || validAddress("/tmp/x") {
		t.Fatal("validAddress accepted an invalid path")
	}
}
