//go:build windows

package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/3586649596/Nikke-clicker/internal/adapters/wininput"
)

func parseBackendChoice(value string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(value))
	if backend == "" {
		backend = "auto"
	}
	switch backend {
	case "auto", "windows":
		return backend, nil
	default:
		return "", fmt.Errorf("invalid --backend %q (windows supports auto|windows)", value)
	}
}

func listInputDevices(_ string) error {
	return fmt.Errorf("device listing is only available with the Linux evdev backend; Windows uses a global keyboard hook")
}

func permissionDeniedHint() string {
	return "Permission denied installing the global keyboard hook. Run as Administrator when the game itself runs elevated."
}

func newPlatform(cfg config, logger *slog.Logger) (*platform, error) {
	if cfg.devicePath != "" {
		logger.Warn("--device is ignored on Windows; using a global keyboard hook")
	}
	hook, err := wininput.NewHook(logger)
	if err != nil {
		return nil, err
	}
	return &platform{
		name:    "windows",
		backend: hook,
		sink:    wininput.NewSink(),
	}, nil
}
