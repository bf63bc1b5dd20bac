package main

import (
	"log/slog"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/3586649596/Nikke-clicker/internal/core/coordinator"
)

// cue plays a short beep on running transitions and raises a desktop
// notification when the keyboard hook fails.
type cue struct {
	logger *slog.Logger

	mu        sync.Mutex
	enabled   bool
	running   bool
	hookError string
}

func newCue(enabled bool, logger *slog.Logger) *cue {
	return &cue{enabled: enabled, logger: logger}
}

func (c *cue) setEnabled(enabled bool) {
	c.mu.Lock()
	c.enabled = enabled
	c.mu.Unlock()
}

func (c *cue) observe(status coordinator.Status) {
	c.mu.Lock()
	startedOrStopped := status.Running != c.running
	newFailure := status.HookError != "" && status.HookError != c.hookError
	c.running = status.Running
	c.hookError = status.HookError
	enabled := c.enabled
	c.mu.Unlock()

	if startedOrStopped && enabled {
		go c.beep(status.Running)
	}
	if newFailure {
		go c.notify("Clicker hotkey unavailable", status.HookError)
	}
}

func (c *cue) beep(running bool) {
	freq := beeep.DefaultFreq
	duration := beeep.DefaultDuration / 2
	if !running {
		freq *= 2
		duration = beeep.DefaultDuration / 3
	}
	if err := beeep.Beep(freq, duration); err != nil {
		c.logger.Debug("Beep failed", "err", err)
	}
}

func (c *cue) notify(title, message string) {
	if err := beeep.Notify(title, message, ""); err != nil {
		c.logger.Debug("Notification failed", "err", err)
	}
}
