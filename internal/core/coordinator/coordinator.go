package coordinator

import (
	"context"
	"fmt"
	"sync"

	"github.com/3586649596/Nikke-clicker/internal/core/autoclicker"
	"github.com/3586649596/Nikke-clicker/internal/core/hotkey"
)

type Listener interface {
	RegisterHotkey(code int, name string)
	UnregisterHotkey(code int)
	SetCaptureMode(enabled bool) bool
	Events() <-chan hotkey.Event
}

type Engine interface {
	Toggle()
	Events() <-chan autoclicker.Event
}

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Status is the display snapshot published after every state change.
type Status struct {
	HookInstalled bool
	HookError     string
	Running       bool
	Capturing     bool
	Hotkey        int
	Clicks        uint64
}

func (s Status) HotkeyLabel() string {
	return hotkey.KeyCodeToString(s.Hotkey)
}

// Coordinator routes listener events to the engine and owns the hotkey
// reassignment flow.
type Coordinator struct {
	listener Listener
	engine   Engine
	logger   Logger

	mu              sync.Mutex
	status          Status
	onStatus        []func(Status)
	onHotkeyChanged []func(code int)
}

func New(listener Listener, engine Engine, hotkeyCode int, logger Logger) (*Coordinator, error) {
	if listener == nil {
		return nil, fmt.Errorf("listener is nil")
	}
	if engine == nil {
		return nil, fmt.Errorf("engine is nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	if hotkeyCode == 0 {
		hotkeyCode = hotkey.DefaultToggleKey
	}

	c := &Coordinator{
		listener: listener,
		engine:   engine,
		logger:   logger,
		status:   Status{Hotkey: hotkeyCode},
	}
	listener.RegisterHotkey(hotkeyCode, hotkey.ToggleLabel)
	return c, nil
}

// OnStatus subscribes to status snapshots. Callbacks may run on any goroutine
// and must marshal UI work themselves.
func (c *Coordinator) OnStatus(fn func(Status)) {
	c.mu.Lock()
	c.onStatus = append(c.onStatus, fn)
	c.mu.Unlock()
}

// OnHotkeyChanged subscribes to toggle hotkey rebinding.
func (c *Coordinator) OnHotkeyChanged(fn func(code int)) {
	c.mu.Lock()
	c.onHotkeyChanged = append(c.onHotkeyChanged, fn)
	c.mu.Unlock()
}

func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Run drains listener and engine events until ctx is done.
func (c *Coordinator) Run(ctx context.Context) error {
	c.notifyStatus()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.listener.Events():
			c.handleListenerEvent(ev)
		case ev := <-c.engine.Events():
			c.handleEngineEvent(ev)
		}
	}
}

// BeginCapture puts the listener in capture mode so the next key press becomes
// the new toggle hotkey.
func (c *Coordinator) BeginCapture() bool {
	// Capturing is set before the listener can emit a capture event.
	c.mu.Lock()
	c.status.Capturing = true
	c.mu.Unlock()
	if !c.listener.SetCaptureMode(true) {
		c.mu.Lock()
		c.status.Capturing = false
		c.mu.Unlock()
		return false
	}
	c.notifyStatus()
	c.logger.Info("Waiting for new toggle hotkey")
	return true
}

func (c *Coordinator) CancelCapture() {
	c.listener.SetCaptureMode(false)
	c.updateStatus(func(s *Status) { s.Capturing = false })
}

// SetHotkey rebinds the toggle action to code.
func (c *Coordinator) SetHotkey(code int) {
	if code == 0 {
		c.logger.Warn("Ignoring empty hotkey code")
		return
	}

	c.mu.Lock()
	previous := c.status.Hotkey
	c.mu.Unlock()
	if previous == code {
		return
	}

	c.listener.UnregisterHotkey(previous)
	c.listener.RegisterHotkey(code, hotkey.ToggleLabel)
	c.updateStatus(func(s *Status) { s.Hotkey = code })
	c.logger.Info("Toggle hotkey changed", "from", hotkey.KeyCodeToString(previous), "to", hotkey.KeyCodeToString(code))

	c.mu.Lock()
	subscribers := append([]func(int){}, c.onHotkeyChanged...)
	c.mu.Unlock()
	for _, fn := range subscribers {
		fn(code)
	}
}

func (c *Coordinator) handleListenerEvent(ev hotkey.Event) {
	switch ev.Kind {
	case hotkey.EventHotkey:
		c.handleHotkey(ev)
	case hotkey.EventInstalled:
		c.updateStatus(func(s *Status) {
			s.HookInstalled = true
			s.HookError = ""
		})
	case hotkey.EventFailed:
		c.logger.Warn("Keyboard hook unavailable", "reason", ev.Reason)
		c.updateStatus(func(s *Status) {
			s.HookInstalled = false
			s.HookError = ev.Reason
			s.Capturing = false
		})
	case hotkey.EventUninstalled:
		c.updateStatus(func(s *Status) {
			s.HookInstalled = false
			s.Capturing = false
		})
	}
}

func (c *Coordinator) handleHotkey(ev hotkey.Event) {
	switch ev.Label {
	case hotkey.ToggleLabel:
		c.logger.Debug("Toggle hotkey pressed", "key", hotkey.KeyCodeToString(ev.Code))
		c.engine.Toggle()
	case hotkey.CaptureLabel:
		if !c.Status().Capturing {
			return
		}
		c.listener.SetCaptureMode(false)
		c.updateStatus(func(s *Status) { s.Capturing = false })
		c.SetHotkey(ev.Code)
	default:
		c.logger.Debug("Unhandled hotkey", "label", ev.Label, "code", ev.Code)
	}
}

func (c *Coordinator) handleEngineEvent(ev autoclicker.Event) {
	switch ev.Kind {
	case autoclicker.EventRunningChanged:
		c.updateStatus(func(s *Status) {
			s.Running = ev.Running
			s.Clicks = ev.Clicks
		})
	case autoclicker.EventClicked:
		c.updateStatus(func(s *Status) { s.Clicks = ev.Clicks })
	}
}

func (c *Coordinator) updateStatus(mutate func(*Status)) {
	c.mu.Lock()
	mutate(&c.status)
	c.mu.Unlock()
	c.notifyStatus()
}

func (c *Coordinator) notifyStatus() {
	c.mu.Lock()
	status := c.status
	subscribers := append([]func(Status){}, c.onStatus...)
	c.mu.Unlock()
	for _, fn := range subscribers {
		fn(status)
	}
}
