package hotkey

import "fmt"

// CaptureLabel marks hotkey events produced while capture mode is on.
const CaptureLabel = "capture"

// ToggleLabel is the name the toggle hotkey is registered under.
const ToggleLabel = "toggle"

// Verdict tells the backend whether a key event continues down the OS input
// pipeline.
type Verdict int

const (
	Forward Verdict = iota
	Consume
)

type KeyEvent struct {
	Code int
	Down bool
}

// Processor decides the fate of one key transition. Implementations must not
// block.
type Processor interface {
	Process(event KeyEvent) Verdict
}

// Backend owns the OS interception resource. Install, Loop and Uninstall run on
// the listener goroutine, which stays locked to one OS thread.
type Backend interface {
	Install(p Processor) error
	// Loop blocks in event retrieval until Interrupt wakes it.
	Loop() error
	// Interrupt is a targeted wake-up of the listener thread. It is safe to call
	// from any goroutine.
	Interrupt()
	Uninstall()
}

// GrabSyncer is implemented by backends that only see keys they explicitly
// grab. SyncGrabs may be called from any goroutine while the hook is installed.
type GrabSyncer interface {
	SyncGrabs(codes []int, capture bool) error
}

type State int

const (
	StateIdle State = iota
	StateInstalling
	StateRunning
	StateUninstalling
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInstalling:
		return "installing"
	case StateRunning:
		return "running"
	case StateUninstalling:
		return "uninstalling"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type EventKind int

const (
	EventHotkey EventKind = iota + 1
	EventInstalled
	EventFailed
	EventUninstalled
)

type Event struct {
	Kind   EventKind
	Code   int
	Label  string
	Reason string
}

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
