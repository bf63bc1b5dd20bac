//go:build linux

package linuxinput

import (
	"sync"

	evdev "github.com/holoplot/go-evdev"

	"github.com/3586649596/Nikke-clicker/internal/core/autoclicker"
)

// Sink clicks through a uinput virtual mouse. Windows are invisible at this
// layer, so posting to a window always reports autoclicker.ErrNoTarget.
type Sink struct {
	mu  sync.Mutex
	dev *evdev.InputDevice
}

func NewSink() (*Sink, error) {
	id := evdev.InputID{
		BusType: uint16(evdev.BUS_VIRTUAL),
		Vendor:  0x1,
		Product: 0x1,
		Version: 1,
	}
	capabilities := map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: {evdev.BTN_LEFT},
		evdev.EV_REL: {evdev.REL_X, evdev.REL_Y},
	}
	dev, err := evdev.CreateDevice(virtualDeviceName, id, capabilities)
	if err != nil {
		return nil, err
	}
	return &Sink{dev: dev}, nil
}

func (s *Sink) Emit(strategy autoclicker.Strategy, transition autoclicker.Transition) error {
	if strategy == autoclicker.StrategyPostToWindow {
		return autoclicker.ErrNoTarget
	}

	value := int32(1)
	if transition == autoclicker.ButtonUp {
		value = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range []evdev.InputEvent{
		{Type: evdev.EV_KEY, Code: evdev.BTN_LEFT, Value: value},
		{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT, Value: 0},
	} {
		if err := s.dev.WriteOne(&ev); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return nil
	}
	err := s.dev.Close()
	s.dev = nil
	return err
}
