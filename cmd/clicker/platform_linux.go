//go:build linux

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/3586649596/Nikke-clicker/internal/adapters/linuxinput"
	"github.com/3586649596/Nikke-clicker/internal/adapters/x11input"
)

func parseBackendChoice(value string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(value))
	if backend == "" {
		backend = "auto"
	}
	switch backend {
	case "auto", "wayland", "x11", "evdev":
		return backend, nil
	default:
		return "", fmt.Errorf("invalid --backend %q (linux supports auto|x11|evdev)", value)
	}
}

func listInputDevices(_ string) error {
	devices, err := linuxinput.ListInputDevices()
	if err != nil {
		return err
	}
	for _, dev := range devices {
		virtualTag := "physical"
		if dev.IsVirtual {
			virtualTag = "virtual"
		}
		kindTag := "other"
		switch {
		case dev.IsKeyboard:
			kindTag = "keyboard"
		case dev.IsPointer:
			kindTag = "pointer"
		}
		fmt.Printf("%s: %s [%s, %s]\n", dev.Path, dev.Name, virtualTag, kindTag)
	}
	return nil
}

func permissionDeniedHint() string {
	return "Permission denied opening input backend. For evdev add yourself to the input group and allow /dev/uinput. On X11 ensure an active X11 session and DISPLAY is set."
}

func newPlatform(cfg config, logger *slog.Logger) (*platform, error) {
	switch resolveLinuxBackend(cfg.backend) {
	case "x11":
		return newX11Platform(cfg, logger)
	default:
		return newEvdevPlatform(cfg, logger)
	}
}

func newX11Platform(cfg config, logger *slog.Logger) (*platform, error) {
	if cfg.devicePath != "" {
		logger.Warn("--device is ignored on X11 backend")
	}
	backend, err := x11input.NewBackend(logger)
	if err != nil {
		return nil, err
	}
	sink, err := x11input.NewSink()
	if err != nil {
		return nil, err
	}
	return &platform{
		name:    "x11",
		backend: backend,
		sink:    sink,
		closers: []func() error{sink.Close},
	}, nil
}

func newEvdevPlatform(cfg config, logger *slog.Logger) (*platform, error) {
	backend, err := linuxinput.NewBackend(cfg.devicePath, logger)
	if err != nil {
		return nil, err
	}
	sink, err := linuxinput.NewSink()
	if err != nil {
		return nil, fmt.Errorf("failed to create uinput device: %w", err)
	}
	logger.Info("Post-to-window is unavailable on evdev; use the inject strategy")
	return &platform{
		name:    "evdev",
		backend: backend,
		sink:    sink,
		closers: []func() error{sink.Close},
	}, nil
}

func resolveLinuxBackend(configured string) string {
	choice := strings.ToLower(strings.TrimSpace(configured))
	if choice == "" {
		choice = "auto"
	}
	if choice == "wayland" {
		choice = "evdev"
	}
	if choice != "auto" {
		return choice
	}

	sessionType := strings.ToLower(strings.TrimSpace(os.Getenv("XDG_SESSION_TYPE")))
	switch sessionType {
	case "wayland":
		return "evdev"
	case "x11":
		return "x11"
	}

	if strings.TrimSpace(os.Getenv("WAYLAND_DISPLAY")) != "" {
		return "evdev"
	}
	if strings.TrimSpace(os.Getenv("DISPLAY")) != "" {
		return "x11"
	}
	return "evdev"
}
