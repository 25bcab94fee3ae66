package instruments

import "github.com/san-kum/fdsynth/internal/fds"

// ReedTube is a bore closed at the far end and driven at the near end by a
// single reed blown with an enveloped mouth pressure.
type ReedTube struct {
	s    *fds.FieldModel
	reed *fds.Reed
	env  *Envelope

	Pressure  float64 // mouth pressure
	Wavespeed float64 // m/s
	Tension   float64 // wave speed of the bore on the unit domain
	Damping   float64
	Pickup    float64
	Gain      float64

	last   fds.ReedFlow
	params paramTable
}

// NewReedTube returns a reed tube blown at 0.0134. The bore keeps the
// default dense material since the closed-form reed step diverges with the
// density of air.
func NewReedTube(sampleRate float64) *ReedTube {
	r := &ReedTube{
		s:         fds.NewFieldModel(100, sampleRate),
		reed:      fds.NewReed(sampleRate),
		env:       NewEnvelope(sampleRate),
		Pressure:  0.0134,
		Wavespeed: 200,
		Tension:   200,
		Damping:   0.1,
		Pickup:    0.5,
		Gain:      100,
	}
	r.params = paramTable{
		"pressure":  {ptr: &r.Pressure, min: 0, max: 0.03},
		"wavespeed": {ptr: &r.Wavespeed, min: 1, max: 1000},
		"tension":   {ptr: &r.Tension, min: 1, max: 0.95 * r.s.SampleRate / float64(r.s.N)},
		"damping":   {ptr: &r.Damping, min: 0, max: 1e4},
		"pickup":    {ptr: &r.Pickup, min: 0, max: 1},
		"gain":      {ptr: &r.Gain, min: 0, max: 1e6},
		"attack":    {ptr: &r.env.Attack, min: 0, max: 10},
		"release":   {ptr: &r.env.ReleaseTime, min: 0, max: 10},
	}
	return r
}

func (r *ReedTube) Name() string        { return "reed-tube" }
func (r *ReedTube) SampleRate() float64 { return r.s.SampleRate }

func (r *ReedTube) Params() map[string]float64 { return r.params.values() }

func (r *ReedTube) SetParam(name string, value float64) error {
	return r.params.set(r.Name(), name, value)
}

func (r *ReedTube) Shape() []float64 {
	out := make([]float64, r.s.N)
	copy(out, r.s.U().Interior())
	return out
}

// Flow returns the reed coupling result of the last sample.
func (r *ReedTube) Flow() fds.ReedFlow { return r.last }

func (r *ReedTube) Trigger() { r.env.Trigger() }
func (r *ReedTube) Release() { r.env.Release() }

func (r *ReedTube) Reset() {
	r.s.Reset()
	r.env.Reset()
	r.reed.SetDisplacement(0, 0)
	r.last = fds.ReedFlow{}
}

func (r *ReedTube) Process() (float64, error) {
	pm := r.env.Next() * r.Pressure
	r.s.U().PrepareClampedBoundaryRight()
	r.last = r.s.AddReedForce(r.reed, r.Wavespeed, pm)
	r.s.AddTensionFreq(r.Tension)
	r.s.AddDamping(r.Damping)
	r.s.Compute()
	return r.Gain * r.s.U().Interpolate(r.Pickup*float64(r.s.N-1)), nil
}
