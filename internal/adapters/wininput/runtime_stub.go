//go:build !windows

package wininput

import (
	"fmt"

	"github.com/3586649596/Nikke-clicker/internal/core/autoclicker"
	"github.com/3586649596/Nikke-clicker/internal/core/hotkey"
)

var errUnsupported = fmt.Errorf("windows input runtime is only available on Windows")

type Hook struct{}

func NewHook(hotkey.Logger) (*Hook, error) {
	return nil, errUnsupported
}

func (h *Hook) Install(hotkey.Processor) error { return errUnsupported }
func (h *Hook) Loop() error                   { return errUnsupported }
func (h *Hook) Interrupt()                    {}
func (h *Hook) Uninstall()                    {}

type Sink struct{}

func NewSink() *Sink {
	return &Sink{}
}

func (s *Sink) Emit(autoclicker.Strategy, autoclicker.Transition) error {
	return errUnsupported
}
