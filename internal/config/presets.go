package config

import "sort"

var Presets = map[string]map[string]*Config{
	"oscillator": {
		"a4": {
			Patch: "oscillator", SampleRate: 44100, Duration: 2.0, Gain: 1,
			Params: map[string]float64{"freq": 440},
		},
		"muffled": {
			Patch: "oscillator", SampleRate: 44100, Duration: 1.0, Gain: 1,
			Params: map[string]float64{"freq": 220, "damping": 10},
		},
	},
	"bowed-oscillator": {
		"slow": {
			Patch: "bowed-oscillator", SampleRate: 44100, Duration: 3.0, Gain: 1, ReleaseAt: 2.0,
			Params: map[string]float64{"bow_velocity": 0.05},
		},
	},
	"plucked-string": {
		"nylon": {
			Patch: "plucked-string", SampleRate: 44100, Duration: 3.0, Gain: 1,
		},
		"bass": {
			Patch: "plucked-string", SampleRate: 44100, Duration: 4.0, Gain: 1,
			Params: map[string]float64{"pitch": 82.41, "damping": 0.5},
		},
		"bridge": {
			Patch: "plucked-string", SampleRate: 44100, Duration: 2.0, Gain: 1,
			Params: map[string]float64{"position": 0.08},
		},
		"muted": {
			Patch: "plucked-string", SampleRate: 44100, Duration: 1.0, Gain: 1,
			Params: map[string]float64{"damping": 20},
		},
	},
	"struck-string": {
		"soft": {
			Patch: "struck-string", SampleRate: 44100, Duration: 3.0, Gain: 1,
			Params: map[string]float64{"velocity": 0.5, "mallet_mass": 0.02},
		},
		"hard": {
			Patch: "struck-string", SampleRate: 44100, Duration: 3.0, Gain: 1,
			Params: map[string]float64{"velocity": 3},
		},
	},
	"bowed-string": {
		"newton": {
			Patch: "bowed-string", SampleRate: 44100, Duration: 3.0, Gain: 1, ReleaseAt: 2.0,
			Params: map[string]float64{"bow": 0},
		},
		"tanh": {
			Patch: "bowed-string", SampleRate: 44100, Duration: 3.0, Gain: 1, ReleaseAt: 2.0,
			Params: map[string]float64{"bow": 3},
		},
		"ponticello": {
			Patch: "bowed-string", SampleRate: 44100, Duration: 3.0, Gain: 1, ReleaseAt: 2.0,
			Params: map[string]float64{"bow_position": 0.05},
		},
	},
	"fingered-string": {
		"stopped": {
			Patch: "fingered-string", SampleRate: 44100, Duration: 3.0, Gain: 1, ReleaseAt: 2.0,
		},
	},
	"reed-tube": {
		"soft": {
			Patch: "reed-tube", SampleRate: 44100, Duration: 2.0, Gain: 1, ReleaseAt: 1.5,
			Params: map[string]float64{"pressure": 0.01},
		},
		"full": {
			Patch: "reed-tube", SampleRate: 44100, Duration: 2.0, Gain: 1, ReleaseAt: 1.5,
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(patch, preset string) *Config {
	patchPresets, ok := Presets[patch]
	if !ok {
		return nil
	}
	cfg, ok := patchPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(patch string) []string {
	patchPresets, ok := Presets[patch]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(patchPresets))
	for name := range patchPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
