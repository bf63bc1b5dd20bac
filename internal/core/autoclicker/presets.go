package autoclicker

import (
	"fmt"
	"strings"
)

// Preset names a tuned set of timing parameters.
type Preset int

const (
	PresetCustom Preset = iota
	PresetStable
	PresetBalanced
	PresetAggressive
)

var presetTimings = map[Preset]Params{
	PresetStable:     {Interval: 150, PressDuration: 250, JitterRange: 8},
	PresetBalanced:   {Interval: 130, PressDuration: 230, JitterRange: 5},
	PresetAggressive: {Interval: 100, PressDuration: 200, JitterRange: 2},
}

func (p Preset) String() string {
	switch p {
	case PresetStable:
		return "stable"
	case PresetBalanced:
		return "balanced"
	case PresetAggressive:
		return "aggressive"
	default:
		return "custom"
	}
}

func (p Preset) Title() string {
	name := p.String()
	return strings.ToUpper(name[:1]) + name[1:]
}

func ParsePreset(value string) (Preset, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "custom":
		return PresetCustom, nil
	case "stable":
		return PresetStable, nil
	case "balanced":
		return PresetBalanced, nil
	case "aggressive":
		return PresetAggressive, nil
	default:
		return PresetCustom, fmt.Errorf("unknown preset %q (expected stable|balanced|aggressive|custom)", value)
	}
}

// Presets lists the selectable presets in display order.
func Presets() []Preset {
	return []Preset{PresetStable, PresetBalanced, PresetAggressive}
}

// Apply returns base with the preset's timing fields. Custom leaves base as is.
func (p Preset) Apply(base Params) Params {
	timing, ok := presetTimings[p]
	if !ok {
		return base
	}
	base.Interval = timing.Interval
	base.PressDuration = timing.PressDuration
	base.JitterRange = timing.JitterRange
	return base
}

// MatchPreset reports which preset the timing fields equal exactly.
func MatchPreset(params Params) Preset {
	for _, preset := range Presets() {
		timing := presetTimings[preset]
		if params.Interval == timing.Interval &&
			params.PressDuration == timing.PressDuration &&
			params.JitterRange == timing.JitterRange {
			return preset
		}
	}
	return PresetCustom
}

// EstimatedCPS is the nominal click rate ignoring jitter.
func EstimatedCPS(params Params) float64 {
	return 1000 / float64(max(1, params.Interval+params.PressDuration))
}

func strategyTitle(strategy Strategy) string {
	if strategy == StrategyPostToWindow {
		return "Post to window"
	}
	return "Global inject"
}

// Summary renders the one-line status shown under the controls.
func Summary(params Params, hotkeyLabel string) string {
	return fmt.Sprintf(
		"%s | %.2f CPS | jitter ±%d ms | preset %s | hotkey %s",
		strategyTitle(params.Strategy),
		EstimatedCPS(params),
		params.JitterRange,
		MatchPreset(params).Title(),
		hotkeyLabel,
	)
}
