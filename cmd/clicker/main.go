package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/3586649596/Nikke-clicker/internal/core/autoclicker"
	"github.com/3586649596/Nikke-clicker/internal/core/coordinator"
	"github.com/3586649596/Nikke-clicker/internal/core/hotkey"
	"github.com/3586649596/Nikke-clicker/internal/settings"
)

type config struct {
	settingsPath string
	backend      string
	devicePath   string
	overrides    []func(*settings.Settings)
	listDevices  bool
	listKeys     bool
	ui           bool
	logLevel     slog.Level
}

// apply layers explicitly set flags over s.
func (c config) apply(s *settings.Settings) {
	for _, override := range c.overrides {
		override(s)
	}
}

type lineSinkWriter struct {
	sink  func(line string)
	mu    sync.Mutex
	lines bytes.Buffer
}

func (w *lineSinkWriter) Write(p []byte) (int, error) {
	if w.sink == nil {
		return len(p), nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	total := len(p)
	for len(p) > 0 {
		idx := bytes.IndexByte(p, '\n')
		if idx == -1 {
			_, _ = w.lines.Write(p)
			break
		}
		_, _ = w.lines.Write(p[:idx])
		line := strings.TrimSpace(w.lines.String())
		w.lines.Reset()
		if line != "" {
			w.sink(line)
		}
		p = p[idx+1:]
	}
	return total, nil
}

func newSlogLogger(level slog.Level, sink func(line string)) *slog.Logger {
	if !debugLogsEnabled() {
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: level,
		}))
	}

	out := io.Writer(os.Stderr)
	if sink != nil {
		out = io.MultiWriter(os.Stderr, &lineSinkWriter{sink: sink})
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	}))
}

func debugLogsEnabled() bool {
	return strings.TrimSpace(os.Getenv("DEBUG")) == "1"
}

func parseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid --log-level %q (expected debug|info|warning|error)", value)
	}
}

func parseConfig(args []string) (config, error) {
	cfg := config{}
	flags := flag.NewFlagSet("clicker", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)

	var (
		intervalMS  int
		pressMS     int
		jitterMS    int
		strategyRaw string
		hotkeyRaw   string
		presetRaw   string
		sound       bool
		backendRaw  string
		logLevelRaw string
		cliMode     bool
	)

	defaults := settings.Defaults()
	flags.IntVar(&intervalMS, "interval-ms", defaults.IntervalMS, "Pause after each release in ms.")
	flags.IntVar(&pressMS, "press-ms", defaults.PressMS, "How long each click stays down in ms.")
	flags.IntVar(&jitterMS, "jitter-ms", defaults.JitterMS, "Maximum random offset applied to both phases in ms (0 disables).")
	flags.StringVar(&strategyRaw, "strategy", defaults.Strategy, "Click delivery: inject (global input) or post (foreground window).")
	flags.StringVar(&hotkeyRaw, "hotkey", hotkey.KeyCodeToString(defaults.ToggleHotkey), "Toggle hotkey name or virtual-key code. See --list-keys.")
	flags.StringVar(&presetRaw, "preset", "", "Timing preset: stable|balanced|aggressive. Explicit timing flags win.")
	flags.BoolVar(&sound, "sound", defaults.Sound, "Beep when clicking starts or stops.")
	flags.StringVar(&cfg.settingsPath, "settings", settings.DefaultPath(), "Settings file (.toml, .json, .yaml).")
	flags.StringVar(&backendRaw, "backend", "auto", "Input backend. Linux: auto|x11|evdev. Windows: auto|windows.")
	flags.StringVar(&cfg.devicePath, "device", "", "evdev keyboard to listen on, e.g. /dev/input/event4. Auto-detected if omitted.")
	flags.BoolVar(&cfg.listDevices, "list-devices", false, "Print available input devices and exit.")
	flags.BoolVar(&cfg.listKeys, "list-keys", false, "Print hotkey names and exit.")
	flags.BoolVar(&cfg.ui, "ui", true, "Start desktop GUI (Fyne) by default. Use --ui=false or --cli for terminal mode.")
	flags.BoolVar(&cliMode, "cli", false, "Force terminal mode (disables GUI).")
	flags.StringVar(&logLevelRaw, "log-level", "info", "Log verbosity (default: info). Allowed: debug, info, warning, error.")

	if err := flags.Parse(args); err != nil {
		return cfg, err
	}
	if flags.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %s", strings.Join(flags.Args(), " "))
	}
	if cliMode {
		cfg.ui = false
	}

	set := make(map[string]bool)
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["preset"] {
		preset, err := autoclicker.ParsePreset(presetRaw)
		if err != nil {
			return cfg, err
		}
		cfg.overrides = append(cfg.overrides, func(s *settings.Settings) {
			*s = s.WithParams(preset.Apply(s.Params()))
		})
	}

	for _, timing := range []struct {
		name  string
		value int
		dst   func(*settings.Settings) *int
	}{
		{"interval-ms", intervalMS, func(s *settings.Settings) *int { return &s.IntervalMS }},
		{"press-ms", pressMS, func(s *settings.Settings) *int { return &s.PressMS }},
		{"jitter-ms", jitterMS, func(s *settings.Settings) *int { return &s.JitterMS }},
	} {
		if !set[timing.name] {
			continue
		}
		if timing.value < 0 {
			return cfg, fmt.Errorf("--%s must be >= 0", timing.name)
		}
		cfg.overrides = append(cfg.overrides, func(s *settings.Settings) {
			*timing.dst(s) = timing.value
			s.LastPreset = autoclicker.MatchPreset(s.Params()).String()
		})
	}

	if set["strategy"] {
		strategy, err := autoclicker.ParseStrategy(strategyRaw)
		if err != nil {
			return cfg, fmt.Errorf("invalid --strategy: %w", err)
		}
		cfg.overrides = append(cfg.overrides, func(s *settings.Settings) { s.Strategy = strategy.String() })
	}
	if set["hotkey"] {
		code, err := settings.ParseHotkey(hotkeyRaw)
		if err != nil {
			return cfg, fmt.Errorf("invalid --hotkey: %w", err)
		}
		cfg.overrides = append(cfg.overrides, func(s *settings.Settings) { s.ToggleHotkey = code })
	}
	if set["sound"] {
		cfg.overrides = append(cfg.overrides, func(s *settings.Settings) { s.Sound = sound })
	}

	parsedLevel, err := parseLogLevel(logLevelRaw)
	if err != nil {
		return cfg, err
	}
	backendChoice, err := parseBackendChoice(backendRaw)
	if err != nil {
		return cfg, err
	}

	cfg.backend = backendChoice
	cfg.logLevel = parsedLevel
	return cfg, nil
}

func isPermissionError(err error) bool {
	return errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.EACCES)
}

func printKeyNames(w io.Writer) {
	codes := hotkey.NamedKeyCodes()
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "%-10s 0x%02X\n", hotkey.KeyCodeToString(code), code)
	}
}

func runCLI(cfg config, stderr io.Writer) int {
	logger := newSlogLogger(cfg.logLevel, nil)
	a, err := newClickerApp(cfg, logger)
	if err != nil {
		if isPermissionError(err) {
			fmt.Fprintln(stderr, permissionDeniedHint())
			return 1
		}
		fmt.Fprintln(stderr, err)
		return 1
	}

	var lastStatus coordinator.Status
	var statusMu sync.Mutex
	a.coordinator.OnStatus(func(status coordinator.Status) {
		statusMu.Lock()
		defer statusMu.Unlock()
		if status.HookError != "" && status.HookError != lastStatus.HookError {
			fmt.Fprintf(stderr, "Keyboard hook unavailable: %s\n%s\n", status.HookError, permissionDeniedHint())
		}
		if status.HookInstalled && !lastStatus.HookInstalled {
			fmt.Fprintf(stderr, "%s\nPress %s to start or stop clicking. Press Ctrl+C to exit.\n",
				autoclicker.Summary(a.engine.Params(), status.HotkeyLabel()), status.HotkeyLabel())
		}
		if status.Running != lastStatus.Running {
			if status.Running {
				fmt.Fprintln(stderr, "Clicking started")
			} else {
				fmt.Fprintf(stderr, "Clicking stopped after %d clicks\n", status.Clicks)
			}
		}
		lastStatus = status
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a.start(ctx)
	<-ctx.Done()
	a.shutdown()
	return 0
}

func run(args []string, stderr io.Writer) int {
	cfg, err := parseConfig(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	if cfg.listKeys {
		printKeyNames(os.Stdout)
		return 0
	}
	if cfg.listDevices {
		if err := listInputDevices(cfg.backend); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	if err := settings.LoadDotEnv(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	if cfg.ui {
		if err := runUI(cfg); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}
	return runCLI(cfg, stderr)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}
