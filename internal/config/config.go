package config

import (
	"fmt"
	"os"

	"github.com/san-kum/fdsynth/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPatch      = "plucked-string"
	DefaultSampleRate = 44100.0
	DefaultDuration   = 2.0
	DefaultGain       = 1.0
)

// Config describes one render: which patch, how long, and the patch
// parameters to apply before triggering it.
type Config struct {
	Patch         string             `yaml:"patch"`
	SampleRate    float64            `yaml:"sample_rate"`
	Duration      float64            `yaml:"duration"`
	Gain          float64            `yaml:"gain"`
	ReleaseAt     float64            `yaml:"release_at"`
	MuteThreshold float64            `yaml:"mute_threshold"`
	Params        map[string]float64 `yaml:"params,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Patch:      DefaultPatch,
		SampleRate: DefaultSampleRate,
		Duration:   DefaultDuration,
		Gain:       DefaultGain,
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of a copy of base. Fields the file leaves out
// keep the base values and file params are merged into the base params.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy, so presets can be modified safely.
func (c *Config) Clone() *Config {
	out := *c
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	return &out
}

// SetParam records a patch parameter override.
func (c *Config) SetParam(name string, value float64) {
	if c.Params == nil {
		c.Params = make(map[string]float64)
	}
	c.Params[name] = value
}

// RenderConfig converts to the render driver's configuration.
func (c *Config) RenderConfig() sim.Config {
	return sim.Config{
		SampleRate:    c.SampleRate,
		Duration:      c.Duration,
		Gain:          c.Gain,
		ReleaseAt:     c.ReleaseAt,
		MuteThreshold: c.MuteThreshold,
	}
}

// Job converts to an ensemble job.
func (c *Config) Job() sim.Job {
	return sim.Job{
		Patch:  c.Patch,
		Params: c.Params,
		Config: c.RenderConfig(),
	}
}
