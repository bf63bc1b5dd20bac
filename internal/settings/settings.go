// Package settings loads, validates and persists the clicker's user settings.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/3586649596/Nikke-clicker/internal/core/autoclicker"
	"github.com/3586649596/Nikke-clicker/internal/core/hotkey"
)

// Environment variables that override values read from the settings file.
const (
	EnvInterval = "CLICKER_INTERVAL_MS"
	EnvPress    = "CLICKER_PRESS_MS"
	EnvJitter   = "CLICKER_JITTER_MS"
	EnvStrategy = "CLICKER_STRATEGY"
	EnvHotkey   = "CLICKER_HOTKEY"
	EnvSound    = "CLICKER_SOUND"
)

type Settings struct {
	IntervalMS   int    `toml:"interval_ms" json:"interval_ms" yaml:"interval_ms"`
	PressMS      int    `toml:"press_ms" json:"press_ms" yaml:"press_ms"`
	JitterMS     int    `toml:"jitter_ms" json:"jitter_ms" yaml:"jitter_ms"`
	Strategy     string `toml:"strategy" json:"strategy" yaml:"strategy"`
	ToggleHotkey int    `toml:"toggle_hotkey" json:"toggle_hotkey" yaml:"toggle_hotkey"`
	LastPreset   string `toml:"last_preset" json:"last_preset" yaml:"last_preset"`
	Sound        bool   `toml:"sound" json:"sound" yaml:"sound"`
}

// Defaults mirrors autoclicker.DefaultParams with the F8 toggle.
func Defaults() Settings {
	params := autoclicker.DefaultParams()
	return Settings{
		IntervalMS:   params.Interval,
		PressMS:      params.PressDuration,
		JitterMS:     params.JitterRange,
		Strategy:     params.Strategy.String(),
		ToggleHotkey: hotkey.DefaultToggleKey,
		LastPreset:   autoclicker.PresetCustom.String(),
	}
}

func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil || configDir == "" {
		return filepath.Join(".", ".nikke-clicker.toml")
	}
	return filepath.Join(configDir, "nikke-clicker", "settings.toml")
}

// Load reads path, picking the decoder from its extension. A missing file
// yields Defaults, and keys absent from the file keep their default values.
func Load(path string) (Settings, error) {
	s := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("failed to read settings %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml", "":
		if _, err := toml.Decode(string(data), &s); err != nil {
			return Defaults(), fmt.Errorf("failed to parse settings %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &s); err != nil {
			return Defaults(), fmt.Errorf("failed to parse settings %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Defaults(), fmt.Errorf("failed to parse settings %s: %w", path, err)
		}
	default:
		return Defaults(), fmt.Errorf("unsupported settings format %q", ext)
	}
	return s, nil
}

// Save writes s atomically through a temp file in the same directory.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}

	data, err := encode(path, s)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to persist settings: %w", err)
	}
	return nil
}

func encode(path string, s Settings) ([]byte, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml", "":
		var buf strings.Builder
		if err := toml.NewEncoder(&buf).Encode(s); err != nil {
			return nil, fmt.Errorf("failed to encode settings: %w", err)
		}
		return []byte(buf.String()), nil
	case ".json":
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode settings: %w", err)
		}
		return append(data, '\n'), nil
	case ".yaml", ".yml":
		data, err := yaml.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("failed to encode settings: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported settings format %q", ext)
	}
}

// LoadDotEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from CLICKER_* environment variables.
func (s *Settings) ApplyEnv() error {
	var errs []error

	for _, target := range []struct {
		name string
		dst  *int
	}{
		{EnvInterval, &s.IntervalMS},
		{EnvPress, &s.PressMS},
		{EnvJitter, &s.JitterMS},
	} {
		raw, ok := lookupEnv(target.name)
		if !ok {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", target.name, err))
			continue
		}
		*target.dst = v
	}

	if raw, ok := lookupEnv(EnvStrategy); ok {
		strategy, err := autoclicker.ParseStrategy(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvStrategy, err))
		} else {
			s.Strategy = strategy.String()
		}
	}

	if raw, ok := lookupEnv(EnvHotkey); ok {
		code, err := ParseHotkey(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvHotkey, err))
		} else {
			s.ToggleHotkey = code
		}
	}

	if raw, ok := lookupEnv(EnvSound); ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvSound, err))
		} else {
			s.Sound = v
		}
	}

	return errors.Join(errs...)
}

func lookupEnv(name string) (string, bool) {
	raw, ok := os.LookupEnv(name)
	raw = strings.TrimSpace(raw)
	return raw, ok && raw != ""
}

// ParseHotkey accepts a key name such as "F8" or a numeric code such as "0x77".
func ParseHotkey(raw string) (int, error) {
	if code := hotkey.StringToKeyCode(raw); code != 0 {
		return code, nil
	}
	parsed, err := strconv.ParseInt(strings.TrimSpace(raw), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown key %q", raw)
	}
	if parsed <= 0 || parsed > 0xFF {
		return 0, fmt.Errorf("key code out of range: %d", parsed)
	}
	return int(parsed), nil
}

func (s Settings) Validate() error {
	for _, field := range []struct {
		name  string
		value int
	}{
		{"interval_ms", s.IntervalMS},
		{"press_ms", s.PressMS},
		{"jitter_ms", s.JitterMS},
	} {
		if field.value < 0 || field.value > autoclicker.MaxTimingMS {
			return fmt.Errorf("%s must be between 0 and %d, got %d", field.name, autoclicker.MaxTimingMS, field.value)
		}
	}
	if _, err := autoclicker.ParseStrategy(s.Strategy); err != nil {
		return err
	}
	if s.ToggleHotkey <= 0 {
		return fmt.Errorf("toggle_hotkey must be set")
	}
	if s.LastPreset != "" {
		if _, err := autoclicker.ParsePreset(s.LastPreset); err != nil {
			return err
		}
	}
	return nil
}

// Params converts s to engine parameters. Call Validate first.
func (s Settings) Params() autoclicker.Params {
	strategy, err := autoclicker.ParseStrategy(s.Strategy)
	if err != nil {
		strategy = autoclicker.DefaultParams().Strategy
	}
	return autoclicker.Params{
		Interval:      s.IntervalMS,
		PressDuration: s.PressMS,
		JitterRange:   s.JitterMS,
		Strategy:      strategy,
	}
}

// WithParams returns a copy of s carrying p and the preset p matches.
func (s Settings) WithParams(p autoclicker.Params) Settings {
	s.IntervalMS = p.Interval
	s.PressMS = p.PressDuration
	s.JitterMS = p.JitterRange
	s.Strategy = p.Strategy.String()
	s.LastPreset = autoclicker.MatchPreset(p).String()
	return s
}
