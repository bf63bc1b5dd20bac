//go:build linux

package x11input

import (
	"fmt"
	"sort"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"

	"github.com/3586649596/Nikke-clicker/internal/core/hotkey"
)

// Backend implements hotkey.Backend with passive key grabs on the root window.
// X delivers only grabbed keys, and grabbed keys never reach other clients, so
// every forwarded key is one the backend never saw.
type Backend struct {
	logger hotkey.Logger

	mu              sync.Mutex
	xu              *xgbutil.XUtil
	conn            *xgb.Conn
	root            xproto.Window
	processor       hotkey.Processor
	keyToCode       map[xproto.Keycode]int
	grabbedKeys     []xproto.Keycode
	keyboardGrabbed bool
	closed          bool
}

func NewBackend(logger hotkey.Logger) (*Backend, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	return &Backend{logger: logger}, nil
}

func (b *Backend) Install(p hotkey.Processor) error {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return fmt.Errorf("failed to open X11 connection: %w", err)
	}
	conn := xu.Conn()
	if conn == nil {
		return fmt.Errorf("failed to open X11 connection")
	}
	keybind.Initialize(xu)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.xu = xu
	b.conn = conn
	b.root = xu.RootWin()
	b.processor = p
	b.keyToCode = make(map[xproto.Keycode]int)
	b.closed = false
	return nil
}

func (b *Backend) Loop() error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()

	for {
		event, xerr := conn.WaitForEvent()
		if xerr != nil {
			if b.isClosed() {
				return nil
			}
			b.logger.Warn("X11 event error", "err", xerr)
			continue
		}
		if event == nil {
			return nil
		}

		switch ev := event.(type) {
		case xproto.KeyPressEvent:
			if code := b.translate(ev.Detail, ev.State); code != 0 {
				b.processor.Process(hotkey.KeyEvent{Code: code, Down: true})
			}
		case xproto.KeyReleaseEvent:
			if code := b.translate(ev.Detail, ev.State); code != 0 {
				b.processor.Process(hotkey.KeyEvent{Code: code, Down: false})
			}
		}
	}
}

// Interrupt closes the connection, which makes WaitForEvent return nil.
func (b *Backend) Interrupt() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil || b.closed {
		return
	}
	b.closed = true
	b.conn.Close()
}

func (b *Backend) Uninstall() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != nil && !b.closed {
		b.ungrabAllLocked()
		b.closed = true
		b.conn.Close()
	}
	b.grabbedKeys = nil
	b.keyboardGrabbed = false
	b.keyToCode = nil
	b.conn = nil
	b.xu = nil
}

// SyncGrabs regrabs exactly the registered codes. Capture mode grabs the whole
// keyboard so any key can be reported.
func (b *Backend) SyncGrabs(codes []int, capture bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil || b.closed {
		return fmt.Errorf("x11 connection is closed")
	}

	b.ungrabAllLocked()

	keyToCode := make(map[xproto.Keycode]int)
	var firstErr error
	for _, code := range codes {
		name, ok := KeysymForCode(code)
		if !ok {
			b.logger.Warn("Hotkey has no X11 keysym", "key", hotkey.KeyCodeToString(code))
			continue
		}
		keycodes := keybind.StrToKeycodes(b.xu, name)
		if len(keycodes) == 0 {
			b.logger.Warn("Failed to resolve X11 key", "keysym", name)
			continue
		}
		for _, keycode := range keycodes {
			keyToCode[keycode] = code
		}
	}

	keys := make([]xproto.Keycode, 0, len(keyToCode))
	for key := range keyToCode {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, key := range keys {
		if err := xproto.GrabKeyChecked(
			b.conn,
			false,
			b.root,
			xproto.ModMaskAny,
			key,
			xproto.GrabModeAsync,
			xproto.GrabModeAsync,
		).Check(); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to grab keycode %d: %w", key, err)
			}
			continue
		}
		b.grabbedKeys = append(b.grabbedKeys, key)
	}
	b.keyToCode = keyToCode

	if capture {
		reply, err := xproto.GrabKeyboard(
			b.conn,
			false,
			b.root,
			xproto.TimeCurrentTime,
			xproto.GrabModeAsync,
			xproto.GrabModeAsync,
		).Reply()
		switch {
		case err != nil:
			return fmt.Errorf("failed to grab keyboard: %w", err)
		case reply.Status != xproto.GrabStatusSuccess:
			return fmt.Errorf("failed to grab keyboard (status=%d)", reply.Status)
		}
		b.keyboardGrabbed = true
	}
	return firstErr
}

func (b *Backend) ungrabAllLocked() {
	for _, key := range b.grabbedKeys {
		xproto.UngrabKey(b.conn, key, b.root, xproto.ModMaskAny)
	}
	b.grabbedKeys = nil
	if b.keyboardGrabbed {
		xproto.UngrabKeyboard(b.conn, xproto.TimeCurrentTime)
		b.keyboardGrabbed = false
	}
}

func (b *Backend) translate(keycode xproto.Keycode, state uint16) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if code, ok := b.keyToCode[keycode]; ok {
		return code
	}
	if b.xu == nil {
		return 0
	}
	return CodeForKeysym(keybind.LookupString(b.xu, state, keycode))
}

func (b *Backend) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
