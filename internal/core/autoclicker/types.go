package autoclicker

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy selects how a synthetic button transition reaches the target.
type Strategy int

const (
	// StrategyInjectGlobal injects through the OS-wide input queue and lands on
	// whichever window has focus.
	StrategyInjectGlobal Strategy = iota
	// StrategyPostToWindow posts button messages straight to the foreground
	// window at the cursor's client coordinates.
	StrategyPostToWindow
)

func (s Strategy) String() string {
	switch s {
	case StrategyInjectGlobal:
		return "inject"
	case StrategyPostToWindow:
		return "post"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

func ParseStrategy(value string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "inject", "global", "sendinput", "0":
		return StrategyInjectGlobal, nil
	case "post", "window", "postmessage", "1":
		return StrategyPostToWindow, nil
	default:
		return StrategyInjectGlobal, fmt.Errorf("invalid strategy %q (expected inject|post)", value)
	}
}

type Transition int

const (
	ButtonDown Transition = iota
	ButtonUp
)

func (t Transition) String() string {
	if t == ButtonUp {
		return "up"
	}
	return "down"
}

// Params are the live-tunable click cycle parameters, all in milliseconds.
type Params struct {
	Interval      int
	PressDuration int
	JitterRange   int
	Strategy      Strategy
}

// MaxTimingMS bounds every timing parameter so phase arithmetic stays far
// from integer overflow.
const MaxTimingMS = 60 * 60 * 1000

const (
	DefaultIntervalMS      = 20
	DefaultPressDurationMS = 200
	DefaultJitterRangeMS   = 5
)

func DefaultParams() Params {
	return Params{
		Interval:      DefaultIntervalMS,
		PressDuration: DefaultPressDurationMS,
		JitterRange:   DefaultJitterRangeMS,
		Strategy:      StrategyInjectGlobal,
	}
}

func (p Params) Validate() error {
	if err := checkTiming("interval", p.Interval); err != nil {
		return err
	}
	if err := checkTiming("press duration", p.PressDuration); err != nil {
		return err
	}
	if err := checkTiming("jitter range", p.JitterRange); err != nil {
		return err
	}
	switch p.Strategy {
	case StrategyInjectGlobal, StrategyPostToWindow:
	default:
		return fmt.Errorf("unknown strategy %d", int(p.Strategy))
	}
	return nil
}

func checkTiming(name string, ms int) error {
	if ms < 0 {
		return fmt.Errorf("%s must be >= 0, got %d", name, ms)
	}
	if ms > MaxTimingMS {
		return fmt.Errorf("%s must be <= %d ms, got %d", name, MaxTimingMS, ms)
	}
	return nil
}

// ErrNoTarget is returned by a Sink when PostToWindow finds no foreground
// window. The engine skips the phase without reporting it.
var ErrNoTarget = errors.New("no foreground window")

// Sink synthesizes one left-button transition.
type Sink interface {
	Emit(strategy Strategy, transition Transition) error
}

type EventKind int

const (
	EventRunningChanged EventKind = iota + 1
	EventClicked
)

type Event struct {
	Kind    EventKind
	Running bool
	Clicks  uint64
}

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
