//go:build windows

package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32DLL = windows.NewLazySystemDLL("user32.dll")

	procRegisterHotKey     = user32DLL.NewProc("RegisterHotKey")
	procUnregisterHotKey   = user32DLL.NewProc("UnregisterHotKey")
	procGetMessageW        = user32DLL.NewProc("GetMessageW")
	procTranslateMessage   = user32DLL.NewProc("TranslateMessage")
	procDispatchMessageW   = user32DLL.NewProc("DispatchMessageW")
	procPostThreadMessageW = user32DLL.NewProc("PostThreadMessageW")
	procPeekMessageW       = user32DLL.NewProc("PeekMessageW")
)

const (
	wmHotkey   = 0x0312
	wmQuit     = 0x0012
	pmNoRemove = 0x0000

	win32ModAlt      = 0x0001
	win32ModControl  = 0x0002
	win32ModShift    = 0x0004
	win32ModWin      = 0x0008
	win32ModNoRepeat = 0x4000

	vkF1 = 0x70

	// maxHotkeyID is the upper bound for application-defined hotkey IDs (Win32).
	maxHotkeyID int32 = 0xBFFF
)

var nextHotkeyID int32 = 0x4000

// point mirrors the Win32 POINT struct.
type point struct {
	x int32
	y int32
}

// winMsg mirrors the Win32 MSG struct (tagMSG from winuser.h).
// Field order and types must not be changed -- the layout must match
// the Win32 binary layout on both 32-bit and 64-bit Windows.
type winMsg struct {
	hWnd     uintptr
	message  uint32
	wParam   uintptr
	lParam   uintptr
	time     uint32
	pt       point
	lPrivate uint32 // reserved by Windows; required for correct struct size
}

type loopReady struct {
	threadID uint32
	err      error
}

type win32Backend struct{}

// win32Registration is one RegisterHotKey reservation owned by a message loop
// running on a dedicated OS thread.
type win32Registration struct {
	hotkeyID int32
	threadID uint32
	doneCh   chan struct{}
}

func newPlatformBackend() backend {
	return win32Backend{}
}

// win32Modifiers converts the neutral bitset to RegisterHotKey flags.
// MOD_NOREPEAT keeps a held chord from toggling the window repeatedly.
func win32Modifiers(mod Modifier) uint32 {
	flags := uint32(win32ModNoRepeat)
	if mod&ModAlt != 0 {
		flags |= win32ModAlt
	}
	if mod&ModCtrl != 0 {
		flags |= win32ModControl
	}
	if mod&ModShift != 0 {
		flags |= win32ModShift
	}
	if mod&ModSuper != 0 {
		flags |= win32ModWin
	}
	return flags
}

// win32VirtualKey maps a parsed key token to its virtual-key code.
// Letters and digits share their ASCII values.
func win32VirtualKey(key string) (uint32, error) {
	if len(key) == 1 {
		return uint32(key[0]), nil
	}
	if n, ok := functionKeyNumber(key); ok {
		return uint32(vkF1 + n - 1), nil
	}
	return 0, fmt.Errorf("no virtual key for %q", key)
}

func (win32Backend) register(binding Binding, fire func()) (registration, error) {
	// Pre-check DLL availability so that failures produce clean errors
	// instead of panics from LazyProc.Call.
	if err := user32DLL.Load(); err != nil {
		return nil, fmt.Errorf("user32.dll is unavailable: %w", err)
	}

	vk, err := win32VirtualKey(binding.Key())
	if err != nil {
		return nil, err
	}

	hotkeyID := atomic.AddInt32(&nextHotkeyID, 1)
	if hotkeyID < 0 || hotkeyID > maxHotkeyID {
		return nil, fmt.Errorf("hotkey ID range exhausted (ID=%d)", hotkeyID)
	}

	readyCh := make(chan loopReady, 1)
	doneCh := make(chan struct{})

	go runHotkeyLoop(hotkeyID, win32Modifiers(binding.Modifiers()), vk, fire, readyCh, doneCh)

	ready := <-readyCh
	if ready.err != nil {
		return nil, ready.err
	}
	if ready.threadID == 0 {
		return nil, errors.New("hotkey loop started but returned invalid thread ID 0")
	}
	return &win32Registration{
		hotkeyID: hotkeyID,
		threadID: ready.threadID,
		doneCh:   doneCh,
	}, nil
}

// stop posts WM_QUIT to the loop thread so GetMessageW returns, then waits for
// the loop to unregister and exit.
func (r *win32Registration) stop() error {
	stopErr := postQuit(r.threadID)
	if stopErr != nil {
		if unregErr := unregisterHotKey(r.hotkeyID); unregErr != nil {
			slog.Warn("[hotkey] DEBUG unregisterHotKey fallback failed (cross-thread; may be expected)",
				"error", unregErr, "hotkeyID", r.hotkeyID)
		}
	}
	if err := waitDone(r.doneCh, "win32 message loop"); err != nil {
		stopErr = errors.Join(stopErr, err)
	}
	return stopErr
}

func runHotkeyLoop(hotkeyID int32, modifiers, vk uint32, fire func(), readyCh chan<- loopReady, doneCh chan struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(doneCh)

	threadID, err := getCurrentThreadID()
	if err != nil {
		readyCh <- loopReady{err: err}
		return
	}

	// PeekMessageW forces Windows to create the thread message queue so that
	// PostThreadMessageW in stop() can deliver WM_QUIT. A zero return only
	// means the queue was empty.
	var qmsg winMsg
	ret, _, peekErr := procPeekMessageW.Call(
		uintptr(unsafe.Pointer(&qmsg)),
		0,
		0,
		0,
		pmNoRemove,
	)
	if ret == 0 && peekErr != syscall.Errno(0) {
		slog.Warn("[hotkey] DEBUG PeekMessageW for queue init returned error",
			"error", peekErr, "hotkeyID", hotkeyID)
	}

	if err := registerHotKey(hotkeyID, modifiers, vk); err != nil {
		readyCh <- loopReady{err: err}
		return
	}
	defer func() {
		if err := unregisterHotKey(hotkeyID); err != nil {
			slog.Error("[hotkey] DEBUG unregisterHotKey on loop exit failed (resource leak)",
				"error", err, "hotkeyID", hotkeyID)
		}
	}()

	readyCh <- loopReady{threadID: threadID}

	for {
		var msg winMsg
		ret, _, lastErr := procGetMessageW.Call(
			uintptr(unsafe.Pointer(&msg)),
			0,
			0,
			0,
		)
		switch int32(ret) {
		case -1:
			slog.Warn("[hotkey] DEBUG GetMessageW returned error, exiting loop", "error", lastErr, "hotkeyID", hotkeyID)
			return
		case 0:
			slog.Info("[hotkey] DEBUG message loop received WM_QUIT, exiting normally", "hotkeyID", hotkeyID)
			return
		}

		if msg.message == wmHotkey && int32(msg.wParam) == hotkeyID {
			fire()
			continue
		}

		procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&msg)))
	}
}

func registerHotKey(hotkeyID int32, modifiers uint32, key uint32) error {
	res, _, err := procRegisterHotKey.Call(
		0,
		uintptr(hotkeyID),
		uintptr(modifiers),
		uintptr(key),
	)
	if res != 0 {
		return nil
	}
	if err == syscall.Errno(0) {
		return errors.New("RegisterHotKey failed")
	}
	return err
}

func unregisterHotKey(hotkeyID int32) error {
	res, _, err := procUnregisterHotKey.Call(0, uintptr(hotkeyID))
	if res != 0 {
		return nil
	}
	if err == syscall.Errno(0) {
		return errors.New("UnregisterHotKey failed")
	}
	return err
}

func postQuit(threadID uint32) error {
	if threadID == 0 {
		return errors.New("cannot post WM_QUIT: threadID is 0")
	}
	res, _, err := procPostThreadMessageW.Call(
		uintptr(threadID),
		wmQuit,
		0,
		0,
	)
	if res != 0 {
		return nil
	}
	if err == syscall.Errno(0) {
		return errors.New("PostThreadMessageW failed")
	}
	return err
}

func getCurrentThreadID() (uint32, error) {
	tid := windows.GetCurrentThreadId()
	if tid == 0 {
		return 0, errors.New("GetCurrentThreadId returned 0")
	}
	return tid, nil
}
