package instruments

import "github.com/san-kum/fdsynth/internal/fds"

// PluckedString is a nylon string released from a triangular shape.
type PluckedString struct {
	body

	Position  float64 // pluck position in [0, 1]
	Amplitude float64 // pluck height in m

	params paramTable
}

// NewPluckedString returns a plucked nylon string tuned to G3.
func NewPluckedString(sampleRate float64) *PluckedString {
	p := &PluckedString{
		body:      newBody(sampleRate, fds.Nylon()),
		Position:  0.2,
		Amplitude: 0.001,
	}
	p.Gain = 400
	p.Brightness = 5e-6
	p.params = paramTable{
		"position":  {ptr: &p.Position, min: 0.05, max: 0.95},
		"amplitude": {ptr: &p.Amplitude, min: 0, max: 0.01},
	}
	p.register(p.params)
	return p
}

func (p *PluckedString) Name() string        { return "plucked-string" }
func (p *PluckedString) SampleRate() float64 { return p.s.SampleRate }
func (p *PluckedString) Shape() []float64    { return p.shape() }

func (p *PluckedString) Params() map[string]float64 { return p.params.values() }

func (p *PluckedString) SetParam(name string, value float64) error {
	return p.params.set(p.Name(), name, value)
}

func (p *PluckedString) Trigger() {
	p.released = false
	p.pluck(p.Position, p.Amplitude)
}

func (p *PluckedString) Release() { p.released = true }
func (p *PluckedString) Reset()   { p.reset() }

func (p *PluckedString) Process() (float64, error) {
	p.prepare()
	p.s.Compute()
	return p.output(), nil
}

// StruckString is a stiff steel string hit by a felt mallet.
type StruckString struct {
	body
	mallet *fds.Mallet

	Position   float64 // strike position in [0, 1]
	Velocity   float64 // mallet speed at impact in m/s
	MalletMass float64

	params paramTable
}

// NewStruckString returns a struck steel string tuned to G3.
func NewStruckString(sampleRate float64) *StruckString {
	p := &StruckString{
		body:       newBody(sampleRate, fds.Steel()),
		mallet:     fds.NewMallet(sampleRate),
		Position:   0.12,
		Velocity:   1,
		MalletMass: 0.01,
	}
	p.Gain = 1000
	p.params = paramTable{
		"position":    {ptr: &p.Position, min: 0, max: 1},
		"velocity":    {ptr: &p.Velocity, min: 0, max: 20},
		"mallet_mass": {ptr: &p.MalletMass, min: 1e-4, max: 1},
	}
	p.register(p.params)
	return p
}

func (p *StruckString) Name() string        { return "struck-string" }
func (p *StruckString) SampleRate() float64 { return p.s.SampleRate }
func (p *StruckString) Shape() []float64    { return p.shape() }

func (p *StruckString) Params() map[string]float64 { return p.params.values() }

func (p *StruckString) SetParam(name string, value float64) error {
	return p.params.set(p.Name(), name, value)
}

// Trigger launches the mallet from just below the string.
func (p *StruckString) Trigger() {
	p.released = false
	p.mallet.Mass = p.MalletMass
	p.mallet.Trigger(0.0005, p.Velocity)
}

func (p *StruckString) Release() { p.released = true }

func (p *StruckString) Reset() {
	p.reset()
	p.mallet = fds.NewMallet(p.s.SampleRate)
}

func (p *StruckString) Process() (float64, error) {
	p.prepare()
	at := p.point(p.Position)
	f := p.mallet.ComputeAndApplyImpactForce(p.s.U().Interpolate(at))
	if f != 0 {
		if err := p.s.AddInterpolatedForce(at, f); err != nil {
			return 0, err
		}
	}
	p.mallet.Compute()
	p.s.Compute()
	return p.output(), nil
}
