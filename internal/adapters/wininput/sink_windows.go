//go:build windows

package wininput

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/3586649596/Nikke-clicker/internal/core/autoclicker"
)

var (
	procSendInput           = user32.NewProc("SendInput")
	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procGetCursorPos        = user32.NewProc("GetCursorPos")
	procScreenToClient      = user32.NewProc("ScreenToClient")
	procPostMessageW        = user32.NewProc("PostMessageW")
)

type mouseInput struct {
	Dx          int32
	Dy          int32
	MouseData   uint32
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

type input struct {
	Type uint32
	Mi   mouseInput
}

// Sink injects left-button transitions with SendInput or PostMessageW.
type Sink struct{}

func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) Emit(strategy autoclicker.Strategy, transition autoclicker.Transition) error {
	if strategy == autoclicker.StrategyPostToWindow {
		return postToForeground(transition)
	}
	return sendInput(transition)
}

func sendInput(transition autoclicker.Transition) error {
	flags := uint32(mouseeventfLeftDown)
	if transition == autoclicker.ButtonUp {
		flags = mouseeventfLeftUp
	}
	in := input{Type: inputMouse, Mi: mouseInput{DwFlags: flags}}

	sent, _, callErr := procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
	if sent != 1 {
		if callErr != nil && callErr != syscall.Errno(0) {
			return fmt.Errorf("SendInput failed: %w", callErr)
		}
		return fmt.Errorf("SendInput sent %d of 1 inputs", sent)
	}
	return nil
}

func postToForeground(transition autoclicker.Transition) error {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return autoclicker.ErrNoTarget
	}

	var pt point
	if ok, _, callErr := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt))); ok == 0 {
		return fmt.Errorf("GetCursorPos failed: %w", callErr)
	}
	if ok, _, callErr := procScreenToClient.Call(hwnd, uintptr(unsafe.Pointer(&pt))); ok == 0 {
		return fmt.Errorf("ScreenToClient failed: %w", callErr)
	}

	msg, wParam := uintptr(wmLButtonDown), uintptr(mkLButton)
	if transition == autoclicker.ButtonUp {
		msg, wParam = uintptr(wmLButtonUp), 0
	}
	if ok, _, callErr := procPostMessageW.Call(hwnd, msg, wParam, makeLParam(pt.X, pt.Y)); ok == 0 {
		return fmt.Errorf("PostMessageW failed: %w", callErr)
	}
	return nil
}
