// Package ipc lets a second launcher process hand work to the running one.
// Frames are single-line JSON over a named pipe (Windows) or a unix socket.
package ipc

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"quicklaunch/internal/userutil"
)

// Commands understood by the running instance.
const (
	CommandActivate = "activate"
	CommandOpen     = "open"
	CommandAdd      = "add"
)

// addressEnvKey overrides DefaultAddress, mainly for tests and side-by-side builds.
const addressEnvKey = "QUICKLAUNCH_IPC_ADDR"

// Request is a single command sent to the running instance.
type Request struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// Response reports the outcome of a Request.
type Response struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CommandExecutor handles a request and returns a response.
type CommandExecutor interface {
	Execute(req Request) Response
}

// ExecutorFunc adapts a function to CommandExecutor.
type ExecutorFunc func(req Request) Response

// Execute calls f(req).
func (f ExecutorFunc) Execute(req Request) Response { return f(req) }

// Errorf builds a failed Response with a formatted error message.
func Errorf(format string, args ...any) Response {
	return Response{OK: false, Error: fmt.Sprintf(format, args...)}
}

// DefaultAddress returns the per-user listen address. A trusted override in
// QUICKLAUNCH_IPC_ADDR is honoured when it passes platform validation.
func DefaultAddress() string {
	if v := strings.TrimSpace(os.Getenv(addressEnvKey)); v != "" {
		if validAddress(v) {
			return v
		}
		slog.Warn("[ipc] address override rejected: value does not match allowed pattern", "value", v)
	}
	return defaultAddressFor(userutil.CurrentUsername())
}

func encodeRequest(req Request) ([]byte, error) {
	return json.Marshal(req)
}

func decodeRequest(raw []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Request{}, err
	}
	req.Command = strings.ToLower(strings.TrimSpace(req.Command))
	if req.Args == nil {
		req.Args = []string{}
	}
	return req, nil
}

func encodeResponse(resp Response) ([]byte, error) {
	return json.Marshal(resp)
}

func decodeResponse(raw []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}
