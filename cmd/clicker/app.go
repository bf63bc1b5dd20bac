package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/3586649596/Nikke-clicker/internal/core/autoclicker"
	"github.com/3586649596/Nikke-clicker/internal/core/coordinator"
	"github.com/3586649596/Nikke-clicker/internal/core/hotkey"
	"github.com/3586649596/Nikke-clicker/internal/settings"
	"github.com/3586649596/Nikke-clicker/internal/singleinstance"
)

const shutdownTimeout = time.Second

// clickerApp wires one platform backend and sink to the engine, listener,
// coordinator and settings store.
type clickerApp struct {
	logger      *slog.Logger
	platform    *platform
	store       *settings.Store
	engine      *autoclicker.Engine
	listener    *hotkey.Listener
	coordinator *coordinator.Coordinator
	cue         *cue
	lock        *singleinstance.Lock
}

func newClickerApp(cfg config, logger *slog.Logger) (*clickerApp, error) {
	lock, err := singleinstance.TryLock(singleinstance.DefaultName)
	if err != nil {
		if errors.Is(err, singleinstance.ErrAlreadyRunning) {
			return nil, fmt.Errorf("another clicker is already running")
		}
		return nil, err
	}

	p, err := newPlatform(cfg, logger)
	if err != nil {
		_ = lock.Release()
		return nil, err
	}
	a, err := wireClickerApp(cfg, p, logger)
	if err != nil {
		p.close()
		_ = lock.Release()
		return nil, err
	}
	a.lock = lock
	return a, nil
}

func wireClickerApp(cfg config, p *platform, logger *slog.Logger) (*clickerApp, error) {
	store, err := settings.Open(cfg.settingsPath)
	if err != nil {
		return nil, err
	}
	current := store.Update(cfg.apply)
	if err := current.Validate(); err != nil {
		return nil, err
	}

	engine, err := autoclicker.NewEngine(current.Params(), p.sink, logger)
	if err != nil {
		return nil, err
	}
	listener, err := hotkey.NewListener(p.backend, logger)
	if err != nil {
		return nil, err
	}
	coord, err := coordinator.New(listener, engine, current.ToggleHotkey, logger)
	if err != nil {
		return nil, err
	}

	a := &clickerApp{
		logger:      logger,
		platform:    p,
		store:       store,
		engine:      engine,
		listener:    listener,
		coordinator: coord,
		cue:         newCue(current.Sound, logger),
	}

	coord.OnHotkeyChanged(func(code int) {
		store.Update(func(s *settings.Settings) { s.ToggleHotkey = code })
		if err := store.Save(); err != nil {
			logger.Warn("Failed to save settings", "err", err)
		}
	})
	coord.OnStatus(a.cue.observe)
	store.OnChange(a.applySettings)

	logger.Info("Backend", "name", p.name)
	logger.Info("Settings", "path", store.Path())
	return a, nil
}

// start installs the hook and begins routing events until ctx is done.
func (a *clickerApp) start(ctx context.Context) {
	a.listener.Start()
	go func() {
		if err := a.coordinator.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("Coordinator stopped", "err", err)
		}
	}()

	if err := a.store.Watch(ctx); err != nil {
		a.logger.Warn("Settings hot reload unavailable", "err", err)
		return
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-a.store.Errors():
				a.logger.Warn("Ignoring settings change", "err", err)
			}
		}
	}()
}

// applySettings pushes a reloaded settings file into the running components.
func (a *clickerApp) applySettings(next settings.Settings) {
	if err := a.engine.SetParams(next.Params()); err != nil {
		a.logger.Warn("Rejected reloaded settings", "err", err)
		return
	}
	a.coordinator.SetHotkey(next.ToggleHotkey)
	a.cue.setEnabled(next.Sound)
	a.logger.Info("Settings reloaded", "summary", autoclicker.Summary(next.Params(), hotkey.KeyCodeToString(next.ToggleHotkey)))
}

// setParams applies p to the engine and remembers it for the next launch.
func (a *clickerApp) setParams(p autoclicker.Params) error {
	if err := a.engine.SetParams(p); err != nil {
		return err
	}
	a.store.Update(func(s *settings.Settings) { *s = s.WithParams(p) })
	return nil
}

func (a *clickerApp) setSound(enabled bool) {
	a.cue.setEnabled(enabled)
	a.store.Update(func(s *settings.Settings) { s.Sound = enabled })
}

func (a *clickerApp) summary() string {
	return autoclicker.Summary(a.engine.Params(), a.coordinator.Status().HotkeyLabel())
}

func (a *clickerApp) shutdown() {
	a.engine.Stop()
	a.listener.Stop()
	if !a.engine.Wait(shutdownTimeout) {
		a.logger.Warn("Click worker did not stop in time")
	}
	// The sink closes below; a worker still mid-press would lose its release.
	if a.engine.Release() {
		a.logger.Info("Released held mouse button")
	}
	if !a.listener.Wait(shutdownTimeout) {
		a.logger.Warn("Keyboard hook did not stop in time")
	}

	_ = a.store.Close()
	if err := a.store.Save(); err != nil {
		a.logger.Warn("Failed to save settings", "err", err)
	}
	a.platform.close()
	if err := a.lock.Release(); err != nil {
		a.logger.Warn("Failed to release instance lock", "err", err)
	}
}
