package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/3586649596/Nikke-clicker/internal/core/hotkey"
	"github.com/3586649596/Nikke-clicker/internal/settings"
)

func applyConfig(t *testing.T, args ...string) (config, settings.Settings) {
	t.Helper()
	cfg, err := parseConfig(args)
	if err != nil {
		t.Fatalf("parseConfig(%v): %v", args, err)
	}
	s := settings.Defaults()
	cfg.apply(&s)
	return cfg, s
}

func TestParseConfigDefaultsLeaveSettingsAlone(t *testing.T) {
	cfg, s := applyConfig(t)
	if !cfg.ui {
		t.Fatal("GUI should be the default mode")
	}
	if len(cfg.overrides) != 0 {
		t.Fatalf("expected no overrides, got %d", len(cfg.overrides))
	}
	if s != settings.Defaults() {
		t.Fatalf("settings changed without flags: %+v", s)
	}
	if cfg.logLevel != slog.LevelInfo {
		t.Fatalf("log level = %v, want info", cfg.logLevel)
	}
}

func TestParseConfigExplicitFlagsOverride(t *testing.T) {
	cfg, s := applyConfig(t,
		"--cli",
		"--interval-ms", "40",
		"--press-ms=120",
		"--jitter-ms", "0",
		"--strategy", "post",
		"--hotkey", "F9",
		"--sound",
		"--log-level", "debug",
	)
	if cfg.ui {
		t.Fatal("--cli must disable the GUI")
	}
	if s.IntervalMS != 40 || s.PressMS != 120 || s.JitterMS != 0 {
		t.Fatalf("timings = %d/%d/%d, want 40/120/0", s.IntervalMS, s.PressMS, s.JitterMS)
	}
	if s.Strategy != "post" {
		t.Fatalf("strategy = %q, want post", s.Strategy)
	}
	if s.ToggleHotkey != hotkey.VKF1+8 {
		t.Fatalf("hotkey = 0x%02X, want F9", s.ToggleHotkey)
	}
	if !s.Sound {
		t.Fatal("--sound not applied")
	}
	if cfg.logLevel != slog.LevelDebug {
		t.Fatalf("log level = %v, want debug", cfg.logLevel)
	}
}

func TestParseConfigTimingFlagsWinOverPreset(t *testing.T) {
	_, s := applyConfig(t, "--interval-ms", "90", "--preset", "stable")
	if s.IntervalMS != 90 {
		t.Fatalf("interval = %d, want 90", s.IntervalMS)
	}
	if s.PressMS != 250 || s.JitterMS != 8 {
		t.Fatalf("preset timings not applied: %+v", s)
	}
	if s.LastPreset != "custom" {
		t.Fatalf("last preset = %q, want custom", s.LastPreset)
	}

	_, s = applyConfig(t, "--preset", "aggressive")
	if s.LastPreset != "aggressive" || s.IntervalMS != 100 || s.PressMS != 200 || s.JitterMS != 2 {
		t.Fatalf("aggressive preset not applied: %+v", s)
	}
}

func TestParseConfigRejectsBadValues(t *testing.T) {
	tests := [][]string{
		{"--interval-ms", "-1"},
		{"--press-ms", "-5"},
		{"--jitter-ms", "-2"},
		{"--strategy", "teleport"},
		{"--hotkey", "hyper"},
		{"--preset", "turbo"},
		{"--log-level", "loud"},
		{"--backend", "carrier-pigeon"},
		{"extra"},
	}
	for _, args := range tests {
		if _, err := parseConfig(args); err == nil {
			t.Fatalf("parseConfig(%v) succeeded, want error", args)
		}
	}
}

func TestLineSinkWriterSplitsLines(t *testing.T) {
	var lines []string
	w := &lineSinkWriter{sink: func(line string) { lines = append(lines, line) }}

	if _, err := w.Write([]byte("first\nsec")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := w.Write([]byte("ond\n\n  third  \n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	want := []string{"first", "second", "third"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("lines = %q, want %q", lines, want)
	}
}

func TestPrintKeyNames(t *testing.T) {
	var buf bytes.Buffer
	printKeyNames(&buf)

	out := buf.String()
	for _, want := range []string{"F8", "0x77", "Space", "Num5"} {
		if !strings.Contains(out, want) {
			t.Fatalf("key list missing %q:\n%s", want, out)
		}
	}
	if got := strings.Count(out, "\n"); got != len(hotkey.NamedKeyCodes()) {
		t.Fatalf("printed %d keys, want %d", got, len(hotkey.NamedKeyCodes()))
	}
}
