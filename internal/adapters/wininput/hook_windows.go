//go:build windows

package wininput

import (
	"errors"
	"fmt"
	"sync/atomic"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/3586649596/Nikke-clicker/internal/core/hotkey"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPeekMessageW        = user32.NewProc("PeekMessageW")
	procTranslateMessage    = user32.NewProc("TranslateMessage")
	procDispatchMessageW    = user32.NewProc("DispatchMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")

	keyboardHookCallback = windows.NewCallback(keyboardLLCallback)

	// The hook procedure gets no user context, so the installed hook is
	// published here. At most one Hook can hold it.
	activeHook atomic.Pointer[Hook]
)

type point struct {
	X int32
	Y int32
}

type keyboardLLHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type message struct {
	Hwnd     uintptr
	Message  uint32
	WParam   uintptr
	LParam   uintptr
	Time     uint32
	Pt       point
	LPrivate uint32
}

// Hook is the WH_KEYBOARD_LL backend for hotkey.Listener.
type Hook struct {
	logger hotkey.Logger

	processor hotkey.Processor
	handle    uintptr
	threadID  atomic.Uint32
}

func NewHook(logger hotkey.Logger) (*Hook, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	return &Hook{logger: logger}, nil
}

func (h *Hook) Install(p hotkey.Processor) error {
	h.processor = p
	if !activeHook.CompareAndSwap(nil, h) {
		return fmt.Errorf("another keyboard hook is already active in this process")
	}

	h.threadID.Store(windows.GetCurrentThreadId())

	// Force creation of the thread message queue so an early WM_QUIT from
	// Interrupt is not lost.
	var msg message
	_, _, _ = procPeekMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0, pmNoRemove)

	handle, _, callErr := procSetWindowsHookExW.Call(uintptr(whKeyboardLL), keyboardHookCallback, 0, 0)
	if handle == 0 {
		h.threadID.Store(0)
		activeHook.CompareAndSwap(h, nil)
		var errno syscall.Errno
		if errors.As(callErr, &errno) && errno != 0 {
			return fmt.Errorf("failed to install keyboard hook (error %d): %w", uint32(errno), callErr)
		}
		return fmt.Errorf("failed to install keyboard hook: %w", callErr)
	}
	h.handle = handle
	h.logger.Debug("SetWindowsHookExW succeeded", "thread", h.threadID.Load())
	return nil
}

func (h *Hook) Loop() error {
	var msg message
	for {
		ret, _, callErr := procGetMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
		switch int32(ret) {
		case -1:
			return fmt.Errorf("windows message loop failed: %w", callErr)
		case 0:
			return nil
		default:
			_, _, _ = procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
			_, _, _ = procDispatchMessageW.Call(uintptr(unsafe.Pointer(&msg)))
		}
	}
}

// Interrupt posts WM_QUIT to the hook thread only.
func (h *Hook) Interrupt() {
	threadID := h.threadID.Load()
	if threadID == 0 {
		return
	}
	ok, _, callErr := procPostThreadMessageW.Call(uintptr(threadID), uintptr(wmQuit), 0, 0)
	if ok == 0 {
		h.logger.Warn("PostThreadMessageW failed", "thread", threadID, "err", callErr)
	}
}

func (h *Hook) Uninstall() {
	if h.handle != 0 {
		if ok, _, callErr := procUnhookWindowsHookEx.Call(h.handle); ok == 0 {
			h.logger.Warn("UnhookWindowsHookEx failed", "err", callErr)
		}
		h.handle = 0
	}
	h.threadID.Store(0)
	h.drainQuit()
	activeHook.CompareAndSwap(h, nil)
}

// drainQuit removes a WM_QUIT posted after Loop was skipped or had already
// returned, so the next hook on this thread does not exit at once.
func (h *Hook) drainQuit() {
	var msg message
	for {
		ret, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, uintptr(wmQuit), uintptr(wmQuit), pmRemove)
		if ret == 0 {
			return
		}
		h.logger.Debug("Discarded pending WM_QUIT")
	}
}

func keyboardLLCallback(code int, wParam uintptr, lParam uintptr) uintptr {
	if code == hcAction && lParam != 0 {
		if h := activeHook.Load(); h != nil {
			event := (*keyboardLLHookStruct)(unsafe.Pointer(lParam))
			if consumeKey(h.processor, code, wParam, event.VkCode) {
				return 1
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(code), wParam, lParam)
	return ret
}
