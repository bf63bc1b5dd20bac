package hotkey

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const eventBufferSize = 64

// Listener keeps the hotkey table and drives a Backend through the
// Idle → Installing → Running → Uninstalling → Idle lifecycle.
type Listener struct {
	backend Backend
	logger  Logger

	tableMu sync.RWMutex
	table   map[int]string
	capture atomic.Bool

	stateMu       sync.Mutex
	state         State
	done          chan struct{}
	lastError     string
	stopRequested atomic.Bool

	events  chan Event
	dropped atomic.Uint64
}

func NewListener(backend Backend, logger Logger) (*Listener, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	return &Listener{
		backend: backend,
		logger:  logger,
		table:   make(map[int]string),
		events:  make(chan Event, eventBufferSize),
	}, nil
}

// Events delivers hotkey and lifecycle events. Sends never block.
func (l *Listener) Events() <-chan Event {
	return l.events
}

func (l *Listener) RegisterHotkey(code int, name string) {
	l.tableMu.Lock()
	l.table[code] = name
	l.tableMu.Unlock()
	l.logger.Debug("Registered hotkey", "code", code, "key", KeyCodeToString(code), "name", name)
	l.syncGrabs()
}

func (l *Listener) UnregisterHotkey(code int) {
	l.tableMu.Lock()
	_, existed := l.table[code]
	delete(l.table, code)
	l.tableMu.Unlock()
	if existed {
		l.syncGrabs()
	}
}

func (l *Listener) ClearHotkeys() {
	l.tableMu.Lock()
	clear(l.table)
	l.tableMu.Unlock()
	l.syncGrabs()
}

func (l *Listener) Hotkeys() map[int]string {
	l.tableMu.RLock()
	defer l.tableMu.RUnlock()
	out := make(map[int]string, len(l.table))
	for code, name := range l.table {
		out[code] = name
	}
	return out
}

// SetCaptureMode reports whether the change was applied. Capture mode needs an
// installed hook, so enabling it while idle is refused.
func (l *Listener) SetCaptureMode(enabled bool) bool {
	if enabled && !l.IsInstalled() {
		l.logger.Warn("Capture mode requires an installed keyboard hook")
		return false
	}
	if l.capture.Swap(enabled) == enabled {
		return true
	}
	l.logger.Debug("Capture mode changed", "enabled", enabled)
	l.syncGrabs()
	return true
}

func (l *Listener) CaptureMode() bool {
	return l.capture.Load()
}

func (l *Listener) State() State {
	l.stateMu.Lock()
	defer l.stateMu.Unlock()
	return l.state
}

func (l *Listener) IsInstalled() bool {
	return l.State() == StateRunning
}

// LastError is the reason of the most recent installation failure.
func (l *Listener) LastError() string {
	l.stateMu.Lock()
	defer l.stateMu.Unlock()
	return l.lastError
}

func (l *Listener) DroppedEvents() uint64 {
	return l.dropped.Load()
}

// Start launches the listener goroutine. The outcome arrives on Events as
// EventInstalled or EventFailed.
func (l *Listener) Start() {
	l.stateMu.Lock()
	if l.state != StateIdle {
		state := l.state
		l.stateMu.Unlock()
		l.logger.Debug("Keyboard listener already active", "state", state.String())
		return
	}
	l.state = StateInstalling
	l.done = make(chan struct{})
	done := l.done
	l.stopRequested.Store(false)
	l.stateMu.Unlock()

	go l.run(done)
}

// Stop asks the listener thread to leave its loop. It does not wait.
func (l *Listener) Stop() {
	l.stopRequested.Store(true)
	switch l.State() {
	case StateInstalling, StateRunning:
		l.backend.Interrupt()
	}
}

// Wait blocks until the current listener goroutine exits or the timeout elapses.
func (l *Listener) Wait(timeout time.Duration) bool {
	l.stateMu.Lock()
	done := l.done
	l.stateMu.Unlock()
	if done == nil {
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

// Process implements Processor. The backend calls it for every key transition
// after filtering pass-through-only notifications.
func (l *Listener) Process(event KeyEvent) Verdict {
	if !event.Down {
		return Forward
	}
	if l.capture.Load() {
		l.publish(Event{Kind: EventHotkey, Code: event.Code, Label: CaptureLabel})
		return Consume
	}

	l.tableMu.RLock()
	name, ok := l.table[event.Code]
	l.tableMu.RUnlock()
	if !ok {
		return Forward
	}
	l.publish(Event{Kind: EventHotkey, Code: event.Code, Label: name})
	return Consume
}

func (l *Listener) run(done chan struct{}) {
	// Never unlocked: the thread exits with this goroutine, taking any
	// thread-bound state the backend left behind with it.
	runtime.LockOSThread()
	defer close(done)

	installed := false
	defer func() {
		if recovered := recover(); recovered != nil {
			l.logger.Error("Keyboard listener panicked", "panic", recovered)
			l.capture.Store(false)
			if installed {
				l.backend.Uninstall()
			}
			l.fail(fmt.Sprintf("keyboard listener panicked: %v", recovered))
		}
	}()

	if err := l.backend.Install(l); err != nil {
		l.logger.Warn("Failed to install keyboard hook", "err", err)
		l.fail(err.Error())
		return
	}
	installed = true
	l.setState(StateRunning)
	l.syncGrabs()
	l.publish(Event{Kind: EventInstalled})
	l.logger.Info("Keyboard hook installed")

	var loopErr error
	if !l.stopRequested.Load() {
		loopErr = l.backend.Loop()
	}

	l.setState(StateUninstalling)
	l.capture.Store(false)
	l.backend.Uninstall()
	installed = false

	if loopErr != nil {
		l.logger.Warn("Keyboard hook loop failed", "err", loopErr)
		l.fail(loopErr.Error())
		return
	}
	l.setState(StateIdle)
	l.publish(Event{Kind: EventUninstalled})
	l.logger.Info("Keyboard hook removed")
}

func (l *Listener) fail(reason string) {
	if reason == "" {
		reason = "unknown error"
	}
	l.stateMu.Lock()
	l.state = StateIdle
	l.lastError = reason
	l.stateMu.Unlock()
	l.publish(Event{Kind: EventFailed, Reason: reason})
}

func (l *Listener) setState(state State) {
	l.stateMu.Lock()
	l.state = state
	l.stateMu.Unlock()
}

func (l *Listener) syncGrabs() {
	syncer, ok := l.backend.(GrabSyncer)
	if !ok || !l.IsInstalled() {
		return
	}

	l.tableMu.RLock()
	codes := make([]int, 0, len(l.table))
	for code := range l.table {
		codes = append(codes, code)
	}
	l.tableMu.RUnlock()
	sort.Ints(codes)

	if err := syncer.SyncGrabs(codes, l.capture.Load()); err != nil {
		l.logger.Warn("Failed to sync key grabs", "err", err)
	}
}

func (l *Listener) publish(event Event) {
	select {
	case l.events <- event:
	default:
		l.dropped.Add(1)
	}
}
