package instruments

import "github.com/san-kum/fdsynth/internal/fds"

// defaultPoints is the grid size of the string patches.
const defaultPoints = 50

// body is the string shared by the string patches: a FieldModel with clamped
// ends, tension tuned to Pitch, optional stiffness and two damping terms.
type body struct {
	s *fds.FieldModel

	Pitch      float64
	Damping    float64
	Brightness float64 // frequency dependent damping sigma1, 0 disables it
	Stiffness  float64 // 1 enables material bending stiffness
	Pickup     float64 // output position in [0, 1]
	Gain       float64
	// ReleaseDamping is added to Damping after Release.
	ReleaseDamping float64

	released bool
}

func newBody(sampleRate float64, m fds.Material) body {
	s := fds.NewFieldModel(defaultPoints, sampleRate)
	s.SetMaterial(m)
	return body{
		s:              s,
		Pitch:          196,
		Damping:        1,
		Stiffness:      1,
		Pickup:         0.8,
		Gain:           1,
		ReleaseDamping: 30,
	}
}

// maxPitch is the highest pitch the explicit scheme stays stable at on this
// grid, with a small margin for the stiffness term.
func (b *body) maxPitch() float64 {
	return 0.95 * b.s.SampleRate / (2 * float64(b.s.N+1))
}

// tension is the wave speed on the unit domain that gives Pitch as the
// fundamental. The clamped halos put the fixed ends one spacing outside the
// interior, so the vibrating length is (N+1)/N.
func (b *body) tension() float64 {
	n := float64(b.s.N)
	return 2 * b.Pitch * (n + 1) / n
}

func (b *body) register(t paramTable) {
	t["pitch"] = &param{ptr: &b.Pitch, min: 1, max: b.maxPitch()}
	t["damping"] = &param{ptr: &b.Damping, min: 0, max: 1e4}
	t["brightness"] = &param{ptr: &b.Brightness, min: 0, max: 1e-3}
	t["stiffness"] = &param{ptr: &b.Stiffness, min: 0, max: 1}
	t["pickup"] = &param{ptr: &b.Pickup, min: 0, max: 1}
	t["gain"] = &param{ptr: &b.Gain, min: 0, max: 1e6}
	t["release_damping"] = &param{ptr: &b.ReleaseDamping, min: 0, max: 1e4}
}

// point maps a position in [0, 1] to a fractional grid index.
func (b *body) point(pos float64) float64 {
	return pos * float64(b.s.N-1)
}

// prepare writes the boundaries and adds the linear forces of one step.
func (b *body) prepare() {
	s := b.s
	s.U().PrepareBoundaries(fds.Clamped, fds.Clamped)
	s.AddTensionFreq(b.tension())
	if b.Stiffness > 0 {
		s.AddStiffness()
	}
	damping := b.Damping
	if b.released {
		damping += b.ReleaseDamping
	}
	s.AddDamping(damping)
	if b.Brightness > 0 {
		s.AddFrequencyDependentDamping(b.Brightness)
	}
}

// output reads the displacement under the pickup.
func (b *body) output() float64 {
	return b.Gain * b.s.U().Interpolate(b.point(b.Pickup))
}

// velocityOutput reads the velocity under the pickup, which ignores static
// offsets such as a string held down by a finger.
func (b *body) velocityOutput() float64 {
	p := b.point(b.Pickup)
	return b.Gain * b.s.SampleRate * (b.s.U().Interpolate(p) - b.s.Up().Interpolate(p))
}

// pluck seeds a triangular shape of height amp peaking at pos, at rest.
func (b *body) pluck(pos, amp float64) {
	peak := b.point(pos)
	last := float64(b.s.N - 1)
	u, up := b.s.U().Interior(), b.s.Up().Interior()
	for i := range u {
		x := float64(i)
		var v float64
		switch {
		case x <= peak:
			v = amp * (x + 1) / (peak + 1)
		default:
			v = amp * (last - x + 1) / (last - peak + 1)
		}
		u[i], up[i] = v, v
	}
}

func (b *body) shape() []float64 {
	out := make([]float64, b.s.N)
	copy(out, b.s.U().Interior())
	return out
}

func (b *body) reset() {
	b.s.Reset()
	b.released = false
}
