package hotkey

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeBackend struct {
	installErr  error
	installGate chan struct{}
	loopPanic   bool

	wake        chan struct{}
	installs    atomic.Int32
	uninstalls  atomic.Int32
	loopEntered atomic.Bool

	mu        sync.Mutex
	processor Processor
	grabs     [][]int
	captures  []bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{wake: make(chan struct{}, 1)}
}

func (f *fakeBackend) Install(p Processor) error {
	if f.installGate != nil {
		<-f.installGate
	}
	f.installs.Add(1)
	if f.installErr != nil {
		return f.installErr
	}
	f.mu.Lock()
	f.processor = p
	f.mu.Unlock()
	return nil
}

func (f *fakeBackend) Loop() error {
	f.loopEntered.Store(true)
	if f.loopPanic {
		panic("message pump corrupted")
	}
	<-f.wake
	return nil
}

func (f *fakeBackend) Interrupt() {
	select {
	case f.wake <- struct{}{}:
	default:
	}
}

func (f *fakeBackend) Uninstall() {
	f.uninstalls.Add(1)
}

type syncingBackend struct {
	*fakeBackend
}

func (s syncingBackend) SyncGrabs(codes []int, capture bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grabs = append(s.grabs, append([]int(nil), codes...))
	s.captures = append(s.captures, capture)
	return nil
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

func newTestListener(t *testing.T, backend Backend) *Listener {
	t.Helper()
	listener, err := NewListener(backend, noopLogger{})
	if err != nil {
		t.Fatalf("NewListener() error = %v", err)
	}
	return listener
}

func nextEvent(t *testing.T, listener *Listener) Event {
	t.Helper()
	select {
	case ev := <-listener.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for listener event")
		return Event{}
	}
}

func expectNoEvent(t *testing.T, listener *Listener) {
	t.Helper()
	select {
	case ev := <-listener.Events():
		t.Fatalf("unexpected event: %#v", ev)
	default:
	}
}

func startInstalled(t *testing.T, listener *Listener) {
	t.Helper()
	listener.Start()
	if ev := nextEvent(t, listener); ev.Kind != EventInstalled {
		t.Fatalf("first event = %#v, want installed", ev)
	}
}

func TestInstallFailureReportsReason(t *testing.T) {
	backend := newFakeBackend()
	backend.installErr = errors.New("SetWindowsHookExW failed: Access is denied. (error 5)")
	listener := newTestListener(t, backend)

	listener.Start()
	ev := nextEvent(t, listener)
	if ev.Kind != EventFailed || ev.Reason == "" {
		t.Fatalf("event = %#v, want failed with reason", ev)
	}
	if !listener.Wait(time.Second) {
		t.Fatalf("listener goroutine did not exit")
	}
	if listener.IsInstalled() {
		t.Fatalf("IsInstalled() = true after failed install")
	}
	if backend.loopEntered.Load() {
		t.Fatalf("event loop entered after failed install")
	}
	if listener.LastError() != ev.Reason {
		t.Fatalf("LastError()=%q, want %q", listener.LastError(), ev.Reason)
	}
	if listener.State() != StateIdle {
		t.Fatalf("State()=%s, want idle", listener.State())
	}
}

func TestRestartAfterFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.installErr = errors.New("denied")
	listener := newTestListener(t, backend)

	listener.Start()
	nextEvent(t, listener)
	listener.Wait(time.Second)

	backend.installErr = nil
	startInstalled(t, listener)
	listener.Stop()
	listener.Wait(time.Second)
	if got := backend.installs.Load(); got != 2 {
		t.Fatalf("installs = %d, want 2", got)
	}
}

func TestStartAndStopLifecycle(t *testing.T) {
	backend := newFakeBackend()
	listener := newTestListener(t, backend)

	startInstalled(t, listener)
	if !listener.IsInstalled() {
		t.Fatalf("IsInstalled() = false after install")
	}

	listener.Start()
	if got := backend.installs.Load(); got != 1 {
		t.Fatalf("second Start() reinstalled, installs = %d", got)
	}

	listener.Stop()
	if !listener.Wait(time.Second) {
		t.Fatalf("listener did not stop")
	}
	if ev := nextEvent(t, listener); ev.Kind != EventUninstalled {
		t.Fatalf("event = %#v, want uninstalled", ev)
	}
	if listener.IsInstalled() || backend.uninstalls.Load() != 1 {
		t.Fatalf("hook not released: installed=%v uninstalls=%d", listener.IsInstalled(), backend.uninstalls.Load())
	}
}

func TestStopDuringInstallSkipsLoop(t *testing.T) {
	backend := newFakeBackend()
	backend.installGate = make(chan struct{})
	listener := newTestListener(t, backend)

	listener.Start()
	listener.Stop()
	close(backend.installGate)

	if !listener.Wait(time.Second) {
		t.Fatalf("listener did not exit")
	}
	if backend.loopEntered.Load() {
		t.Fatalf("loop entered after stop was requested")
	}
	if backend.uninstalls.Load() != 1 {
		t.Fatalf("uninstalls = %d, want 1", backend.uninstalls.Load())
	}
}

func TestProcessRegisteredHotkey(t *testing.T) {
	listener := newTestListener(t, newFakeBackend())
	listener.RegisterHotkey(VKF8, ToggleLabel)

	if got := listener.Process(KeyEvent{Code: VKF8, Down: true}); got != Consume {
		t.Fatalf("Process(F8 down) = %v, want consume", got)
	}
	ev := nextEvent(t, listener)
	if ev.Kind != EventHotkey || ev.Code != VKF8 || ev.Label != ToggleLabel {
		t.Fatalf("event = %#v", ev)
	}

	if got := listener.Process(KeyEvent{Code: VKF8, Down: false}); got != Forward {
		t.Fatalf("Process(F8 up) = %v, want forward", got)
	}
	if got := listener.Process(KeyEvent{Code: 0x41, Down: true}); got != Forward {
		t.Fatalf("Process(A down) = %v, want forward", got)
	}
	expectNoEvent(t, listener)
}

func TestRegisterHotkeyOverwritesName(t *testing.T) {
	listener := newTestListener(t, newFakeBackend())
	listener.RegisterHotkey(VKF8, "first")
	listener.RegisterHotkey(VKF8, ToggleLabel)

	hotkeys := listener.Hotkeys()
	if len(hotkeys) != 1 || hotkeys[VKF8] != ToggleLabel {
		t.Fatalf("Hotkeys() = %#v", hotkeys)
	}
	listener.UnregisterHotkey(0x99)
	listener.ClearHotkeys()
	if len(listener.Hotkeys()) != 0 {
		t.Fatalf("ClearHotkeys() left entries")
	}
}

func TestUnregisteredCodesNeverMatch(t *testing.T) {
	listener := newTestListener(t, newFakeBackend())
	for _, code := range NamedKeyCodes() {
		listener.RegisterHotkey(code, KeyCodeToString(code))
		listener.UnregisterHotkey(code)
		if got := listener.Process(KeyEvent{Code: code, Down: true}); got != Forward {
			t.Fatalf("Process(0x%02X) after unregister = %v, want forward", code, got)
		}
	}
	expectNoEvent(t, listener)
}

func TestCaptureModeReportsRawCode(t *testing.T) {
	backend := newFakeBackend()
	listener := newTestListener(t, backend)
	startInstalled(t, listener)
	defer func() {
		listener.Stop()
		listener.Wait(time.Second)
	}()

	listener.RegisterHotkey(0x41, ToggleLabel)
	if !listener.SetCaptureMode(true) {
		t.Fatalf("SetCaptureMode(true) refused with hook installed")
	}

	if got := listener.Process(KeyEvent{Code: 0x41, Down: true}); got != Consume {
		t.Fatalf("Process(A down) = %v, want consume", got)
	}
	ev := nextEvent(t, listener)
	if ev.Kind != EventHotkey || ev.Code != 0x41 || ev.Label != CaptureLabel {
		t.Fatalf("event = %#v, want capture of 0x41", ev)
	}
	expectNoEvent(t, listener)
}

func TestCaptureModeRequiresInstalledHook(t *testing.T) {
	listener := newTestListener(t, newFakeBackend())
	if listener.SetCaptureMode(true) {
		t.Fatalf("SetCaptureMode(true) applied without a hook")
	}
	if listener.CaptureMode() {
		t.Fatalf("capture mode enabled without a hook")
	}
}

func TestStopClearsCaptureMode(t *testing.T) {
	listener := newTestListener(t, newFakeBackend())
	startInstalled(t, listener)
	listener.SetCaptureMode(true)

	listener.Stop()
	listener.Wait(time.Second)
	if listener.CaptureMode() {
		t.Fatalf("capture mode survived uninstall")
	}
}

func TestGrabSyncerFollowsTable(t *testing.T) {
	backend := syncingBackend{newFakeBackend()}
	listener := newTestListener(t, backend)
	listener.RegisterHotkey(VKF8, ToggleLabel)

	startInstalled(t, listener)
	listener.RegisterHotkey(VKF1, "other")
	listener.SetCaptureMode(true)
	listener.Stop()
	listener.Wait(time.Second)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	if len(backend.grabs) != 3 {
		t.Fatalf("SyncGrabs called %d times, want 3", len(backend.grabs))
	}
	if got := backend.grabs[0]; len(got) != 1 || got[0] != VKF8 {
		t.Fatalf("initial grabs = %v", got)
	}
	if got := backend.grabs[1]; len(got) != 2 || got[0] != VKF1 || got[1] != VKF8 {
		t.Fatalf("grabs after register = %v", got)
	}
	if !backend.captures[2] {
		t.Fatalf("capture flag not propagated")
	}
}

func TestLoopPanicIsContained(t *testing.T) {
	backend := newFakeBackend()
	backend.loopPanic = true
	listener := newTestListener(t, backend)

	listener.Start()
	if ev := nextEvent(t, listener); ev.Kind != EventInstalled {
		t.Fatalf("event = %#v, want installed", ev)
	}
	ev := nextEvent(t, listener)
	if ev.Kind != EventFailed || ev.Reason == "" {
		t.Fatalf("event = %#v, want failed", ev)
	}
	listener.Wait(time.Second)
	if listener.IsInstalled() || backend.uninstalls.Load() != 1 {
		t.Fatalf("hook not released after panic")
	}
}
