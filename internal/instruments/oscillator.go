package instruments

import (
	"math"

	"github.com/san-kum/fdsynth/internal/fds"
)

// Oscillator is a damped mass-spring system set ringing by Trigger.
type Oscillator struct {
	m *fds.PointModel

	Freq      float64
	Damping   float64
	Hardening float64 // frequency of the cubic spring term, 0 disables it
	Amplitude float64
	Gain      float64

	released bool
	params   paramTable
}

// NewOscillator returns a 440 Hz oscillator.
func NewOscillator(sampleRate float64) *Oscillator {
	o := &Oscillator{
		m:         fds.NewPointModel(sampleRate),
		Freq:      440,
		Damping:   3,
		Amplitude: 0.5,
		Gain:      1,
	}
	nyquist := o.m.SampleRate / 2
	o.params = paramTable{
		"freq":      {ptr: &o.Freq, min: 1, max: nyquist / math.Pi},
		"damping":   {ptr: &o.Damping, min: 0, max: 1e4},
		"hardening": {ptr: &o.Hardening, min: 0, max: nyquist / math.Pi},
		"amplitude": {ptr: &o.Amplitude, min: 0, max: 10},
		"gain":      {ptr: &o.Gain, min: 0, max: 1e6},
	}
	return o
}

func (o *Oscillator) Name() string        { return "oscillator" }
func (o *Oscillator) SampleRate() float64 { return o.m.SampleRate }

func (o *Oscillator) Params() map[string]float64 { return o.params.values() }

func (o *Oscillator) SetParam(name string, value float64) error {
	return o.params.set(o.Name(), name, value)
}

// Trigger displaces the mass by Amplitude and lets it go.
func (o *Oscillator) Trigger() {
	o.m.SetState(o.Amplitude, 0)
	o.released = false
}

// Release raises the damping tenfold.
func (o *Oscillator) Release() { o.released = true }

func (o *Oscillator) Reset() {
	o.m.Reset()
	o.released = false
}

func (o *Oscillator) Process() (float64, error) {
	o.m.AddSpringForceFreq(0, o.Freq)
	if o.Hardening > 0 {
		o.m.AddNonLinearSpringForceFreq(0, o.Hardening)
	}
	damping := o.Damping
	if o.released {
		damping *= 10
	}
	o.m.AddDamping(damping)
	o.m.Compute()
	return o.Gain * o.m.U, nil
}

// BowedOscillator is a mass-spring system sustained by bow friction whose
// force follows an ADSR envelope.
type BowedOscillator struct {
	m   *fds.PointModel
	env *Envelope

	Freq         float64
	Damping      float64
	BowVelocity  float64
	BowForce     float64
	BowSharpness float64 // a, width of the friction peak
	BowEpsilon   float64 // residual friction at high slip speed
	Gain         float64

	params paramTable
}

// NewBowedOscillator returns a 220 Hz bowed oscillator.
func NewBowedOscillator(sampleRate float64) *BowedOscillator {
	b := &BowedOscillator{
		m:            fds.NewPointModel(sampleRate),
		Freq:         220,
		Damping:      2,
		BowVelocity:  0.1,
		BowForce:     0.05,
		BowSharpness: 10,
		BowEpsilon:   0.1,
		Gain:         2000,
	}
	b.env = NewEnvelope(b.m.SampleRate)
	nyquist := b.m.SampleRate / 2
	b.params = paramTable{
		"freq":          {ptr: &b.Freq, min: 1, max: nyquist / math.Pi},
		"damping":       {ptr: &b.Damping, min: 0, max: 1e4},
		"bow_velocity":  {ptr: &b.BowVelocity, min: -10, max: 10},
		"bow_force":     {ptr: &b.BowForce, min: 0, max: 10},
		"bow_sharpness": {ptr: &b.BowSharpness, min: 0, max: 1e4},
		"bow_epsilon":   {ptr: &b.BowEpsilon, min: 0, max: 1},
		"gain":          {ptr: &b.Gain, min: 0, max: 1e6},
		"attack":        {ptr: &b.env.Attack, min: 0, max: 10},
		"release":       {ptr: &b.env.ReleaseTime, min: 0, max: 10},
	}
	return b
}

func (b *BowedOscillator) Name() string        { return "bowed-oscillator" }
func (b *BowedOscillator) SampleRate() float64 { return b.m.SampleRate }

func (b *BowedOscillator) Params() map[string]float64 { return b.params.values() }

func (b *BowedOscillator) SetParam(name string, value float64) error {
	return b.params.set(b.Name(), name, value)
}

func (b *BowedOscillator) Trigger() { b.env.Trigger() }
func (b *BowedOscillator) Release() { b.env.Release() }

func (b *BowedOscillator) Reset() {
	b.m.Reset()
	b.env.Reset()
}

func (b *BowedOscillator) Process() (float64, error) {
	level := b.env.Next()
	b.m.AddSpringForceFreq(0, b.Freq)
	b.m.AddDamping(b.Damping)
	if level > 0 {
		b.m.AddBowForce(b.BowVelocity, level*b.BowForce, b.BowSharpness, b.BowEpsilon)
	}
	b.m.Compute()
	return b.Gain * b.m.U, nil
}
