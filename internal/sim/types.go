package sim

import "math"

// Sample is one output sample of a render with its position in time.
type Sample struct {
	Index int
	Time  float64
	Value float64
	// Err is a recoverable numerical failure the patch reported for this
	// sample, e.g. a bow solve that did not converge.
	Err error
	// Muted is set when the raw output was non-finite or above the mute
	// threshold; Value is then 0.
	Muted bool
}

// IsValid reports whether the sample value is finite.
func (s Sample) IsValid() bool {
	return !math.IsNaN(s.Value) && !math.IsInf(s.Value, 0)
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnSample(s Sample)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(s Sample)

func (f ObserverFunc) OnSample(s Sample) { f(s) }

// DefaultMuteThreshold is the output level above which a render is
// considered to have blown up.
const DefaultMuteThreshold = 1.5

type Config struct {
	SampleRate float64
	// Duration of the render in seconds.
	Duration float64
	// Gain scales the patch output; zero means 1.
	Gain float64
	// ReleaseAt is the time in seconds at which the note is released. Zero
	// holds the note for the whole render.
	ReleaseAt float64
	// MuteThreshold bounds |output|; zero means DefaultMuteThreshold. Samples
	// beyond it are muted and the patch is reset.
	MuteThreshold float64
	// StopOnUnstable ends the render at the first muted sample.
	StopOnUnstable bool
}

func (c Config) gain() float64 {
	if c.Gain == 0 {
		return 1
	}
	return c.Gain
}

func (c Config) muteThreshold() float64 {
	if c.MuteThreshold <= 0 {
		return DefaultMuteThreshold
	}
	return c.MuteThreshold
}

// Steps is the number of samples the config renders.
func (c Config) Steps() int {
	return int(math.Round(c.Duration * c.SampleRate))
}

type Result struct {
	Patch      string
	SampleRate float64
	Samples    []float64
	Metrics    map[string]float64

	StepsTaken     int
	SolverFailures int
	// Unstable is set when at least one sample was muted.
	Unstable bool
	Errors   []error
}

// Duration returns the rendered length in seconds.
func (r *Result) Duration() float64 {
	if r.SampleRate == 0 {
		return 0
	}
	return float64(len(r.Samples)) / r.SampleRate
}
