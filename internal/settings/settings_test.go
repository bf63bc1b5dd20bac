package settings

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3586649596/Nikke-clicker/internal/core/autoclicker"
	"github.com/3586649596/Nikke-clicker/internal/core/hotkey"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvInterval, EnvPress, EnvJitter, EnvStrategy, EnvHotkey, EnvSound} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func TestDefaults(t *testing.T) {
	s := Defaults()
	assert.Equal(t, 20, s.IntervalMS)
	assert.Equal(t, 200, s.PressMS)
	assert.Equal(t, 5, s.JitterMS)
	assert.Equal(t, "inject", s.Strategy)
	assert.Equal(t, hotkey.VKF8, s.ToggleHotkey)
	assert.Equal(t, "custom", s.LastPreset)
	assert.False(t, s.Sound)
	require.NoError(t, s.Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("interval_ms = 75\nstrategy = \"post\"\n"), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 75, s.IntervalMS)
	assert.Equal(t, "post", s.Strategy)
	assert.Equal(t, 200, s.PressMS)
	assert.Equal(t, hotkey.VKF8, s.ToggleHotkey)
}

func TestSaveLoadEveryFormat(t *testing.T) {
	want := Settings{
		IntervalMS:   130,
		PressMS:      230,
		JitterMS:     5,
		Strategy:     "post",
		ToggleHotkey: hotkey.VKF1 + 5,
		LastPreset:   "balanced",
		Sound:        true,
	}

	for _, name := range []string{"settings.toml", "settings.json", "settings.yaml", "settings.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, Save(path, want))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			_, err = os.Stat(path + ".tmp")
			assert.True(t, os.IsNotExist(err), "temp file must be renamed away")
		})
	}
}

func TestSaveFilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, Save(path, Defaults()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.ini")
	require.NoError(t, os.WriteFile(path, []byte("interval_ms=1"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := Load(path)
	assert.Error(t, err)
	assert.Equal(t, Defaults(), s)
}

func TestApplyEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvInterval, "40")
	t.Setenv(EnvPress, "120")
	t.Setenv(EnvJitter, "0")
	t.Setenv(EnvStrategy, "window")
	t.Setenv(EnvHotkey, "f9")
	t.Setenv(EnvSound, "true")

	s := Defaults()
	require.NoError(t, s.ApplyEnv())
	assert.Equal(t, 40, s.IntervalMS)
	assert.Equal(t, 120, s.PressMS)
	assert.Equal(t, 0, s.JitterMS)
	assert.Equal(t, "post", s.Strategy)
	assert.Equal(t, hotkey.VKF1+8, s.ToggleHotkey)
	assert.True(t, s.Sound)
}

func TestApplyEnvNumericHotkey(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvHotkey, "0x41")

	s := Defaults()
	require.NoError(t, s.ApplyEnv())
	assert.Equal(t, hotkey.VKA, s.ToggleHotkey)
}

func TestApplyEnvReportsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvInterval, "fast")
	t.Setenv(EnvStrategy, "teleport")

	s := Defaults()
	err := s.ApplyEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvInterval)
	assert.Contains(t, err.Error(), EnvStrategy)
	assert.Equal(t, 20, s.IntervalMS)
	assert.Equal(t, "inject", s.Strategy)
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPress, "99")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(EnvPress+"=300\n"+EnvJitter+"=7\n"), 0o600))
	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "absent.env")))

	s := Defaults()
	require.NoError(t, s.ApplyEnv())
	assert.Equal(t, 99, s.PressMS)
	assert.Equal(t, 7, s.JitterMS)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"negative interval", func(s *Settings) { s.IntervalMS = -1 }},
		{"negative press", func(s *Settings) { s.PressMS = -1 }},
		{"negative jitter", func(s *Settings) { s.JitterMS = -1 }},
		{"huge interval", func(s *Settings) { s.IntervalMS = autoclicker.MaxTimingMS + 1 }},
		{"huge press", func(s *Settings) { s.PressMS = math.MaxInt/1000 + 1 }},
		{"huge jitter", func(s *Settings) { s.JitterMS = math.MaxInt/2 + 1 }},
		{"unknown strategy", func(s *Settings) { s.Strategy = "telepathy" }},
		{"missing hotkey", func(s *Settings) { s.ToggleHotkey = 0 }},
		{"unknown preset", func(s *Settings) { s.LastPreset = "turbo" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.modify(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestParamsRoundTrip(t *testing.T) {
	p := autoclicker.PresetStable.Apply(autoclicker.DefaultParams())
	s := Defaults().WithParams(p)

	assert.Equal(t, "stable", s.LastPreset)
	assert.Equal(t, p, s.Params())

	p.Interval++
	assert.Equal(t, "custom", Defaults().WithParams(p).LastPreset)
}

func TestParseHotkey(t *testing.T) {
	code, err := ParseHotkey("Space")
	require.NoError(t, err)
	assert.Equal(t, hotkey.VKSpace, code)

	code, err = ParseHotkey("119")
	require.NoError(t, err)
	assert.Equal(t, hotkey.VKF8, code)

	_, err = ParseHotkey("hyper")
	assert.Error(t, err)
	_, err = ParseHotkey("0x1FF")
	assert.Error(t, err)
}
