//go:build !linux && !windows

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

var errUnsupportedPlatform = fmt.Errorf("no keyboard hook or click backend for %s/%s (supported: windows, linux x11/evdev)", runtime.GOOS, runtime.GOARCH)

func parseBackendChoice(value string) (string, error) {
	switch choice := strings.ToLower(strings.TrimSpace(value)); choice {
	case "", "auto":
		return "auto", nil
	default:
		return "", fmt.Errorf("invalid --backend %q: %w", value, errUnsupportedPlatform)
	}
}

func listInputDevices(string) error {
	return errors.New("input device listing needs the linux evdev backend")
}

func permissionDeniedHint() string {
	return "Permission denied opening the input backend."
}

func newPlatform(config, *slog.Logger) (*platform, error) {
	return nil, errUnsupportedPlatform
}
