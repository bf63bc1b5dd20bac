package main

import (
	"github.com/3586649596/Nikke-clicker/internal/core/autoclicker"
	"github.com/3586649596/Nikke-clicker/internal/core/hotkey"
)

// platform is the keyboard backend and click sink chosen for this OS.
type platform struct {
	name    string
	backend hotkey.Backend
	sink    autoclicker.Sink
	closers []func() error
}

func (p *platform) close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		_ = p.closers[i]()
	}
	p.closers = nil
}
