package instruments

import (
	"fmt"

	"github.com/san-kum/fdsynth/internal/fds"
)

// BowKind selects the friction model of a bowed string.
type BowKind int

const (
	// BowNewton solves the continuous friction curve implicitly.
	BowNewton BowKind = iota
	BowContinuous
	BowExponential
	BowTanh
)

func (k BowKind) String() string {
	switch k {
	case BowNewton:
		return "newton"
	case BowContinuous:
		return "continuous"
	case BowExponential:
		return "exponential"
	case BowTanh:
		return "tanh"
	}
	return fmt.Sprintf("BowKind(%d)", int(k))
}

// BowedString is a steel string driven by a bow whose force and velocity
// follow an ADSR envelope.
type BowedString struct {
	body
	env *Envelope

	Bow          float64 // BowKind as a number so it can be set like any param
	BowPosition  float64 // in [0, 1]
	BowVelocity  float64 // m/s
	BowForce     float64 // N
	BowSharpness float64 // alpha of the continuous and tanh curves, a of the exponential one
	BowEpsilon   float64

	params paramTable
}

// NewBowedString returns a Newton-bowed steel string tuned to G3.
func NewBowedString(sampleRate float64) *BowedString {
	b := &BowedString{
		body:         newBody(sampleRate, fds.Steel()),
		BowPosition:  0.1,
		BowVelocity:  0.2,
		BowForce:     0.4,
		BowSharpness: 100,
		BowEpsilon:   0.1,
	}
	b.Gain = 1000
	b.env = NewEnvelope(sampleRate)
	b.params = paramTable{
		"bow":           {ptr: &b.Bow, min: 0, max: float64(BowTanh)},
		"bow_position":  {ptr: &b.BowPosition, min: 0, max: 1},
		"bow_velocity":  {ptr: &b.BowVelocity, min: -5, max: 5},
		"bow_force":     {ptr: &b.BowForce, min: 0, max: 10},
		"bow_sharpness": {ptr: &b.BowSharpness, min: 0, max: 1e4},
		"bow_epsilon":   {ptr: &b.BowEpsilon, min: 0, max: 1},
		"attack":        {ptr: &b.env.Attack, min: 0, max: 10},
		"release":       {ptr: &b.env.ReleaseTime, min: 0, max: 10},
	}
	b.register(b.params)
	return b
}

func (b *BowedString) Name() string        { return "bowed-string" }
func (b *BowedString) SampleRate() float64 { return b.s.SampleRate }
func (b *BowedString) Shape() []float64    { return b.shape() }

func (b *BowedString) Params() map[string]float64 { return b.params.values() }

func (b *BowedString) SetParam(name string, value float64) error {
	return b.params.set(b.Name(), name, value)
}

// Kind returns the selected bow model.
func (b *BowedString) Kind() BowKind { return BowKind(b.Bow) }

func (b *BowedString) Trigger() {
	b.released = false
	b.env.Trigger()
}

// Release lifts the bow; the string rings out with its own damping.
func (b *BowedString) Release() { b.env.Release() }

func (b *BowedString) Reset() {
	b.reset()
	b.env.Reset()
}

// bow adds the bow force for this step. It must run after every other
// force, since the Newton bow reads the accumulated force at its point.
func (b *BowedString) bow() error {
	level := b.env.Next()
	if level <= 0 {
		return nil
	}
	i := int(b.point(b.BowPosition) + 0.5)
	vb, fb := level*b.BowVelocity, level*b.BowForce
	switch b.Kind() {
	case BowContinuous:
		b.s.AddContinuousBowForce(i, vb, fb, b.BowSharpness)
	case BowExponential:
		b.s.AddExponentialBowForce(i, vb, fb, b.BowSharpness, b.BowEpsilon)
	case BowTanh:
		b.s.AddTanhBowForce(i, vb, fb, b.BowSharpness)
	default:
		return b.s.AddNewtonBowForce(i, vb, fb, b.BowSharpness)
	}
	return nil
}

func (b *BowedString) Process() (float64, error) {
	b.prepare()
	err := b.bow()
	b.s.Compute()
	return b.output(), err
}

// FingeredString is a bowed string stopped by a finger pressing it towards
// a fingerboard.
type FingeredString struct {
	*BowedString
	finger *fds.Finger

	FingerPosition float64 // in [0, 1]
	// Fingerboard is the board height below the string in m; 0 removes it.
	Fingerboard float64
	// BoardStiffness is the stiffness of the board contact.
	BoardStiffness float64
}

// NewFingeredString returns a bowed string with a finger at 0.6 and a
// fingerboard 5 mm below the string. The output is the string velocity at
// the pickup, so the held-down shape does not offset it.
func NewFingeredString(sampleRate float64) *FingeredString {
	f := &FingeredString{
		BowedString:    NewBowedString(sampleRate),
		finger:         fds.NewFinger(sampleRate),
		FingerPosition: 0.6,
		Fingerboard:    -0.005,
		BoardStiffness: 1e6,
	}
	f.Gain = 1
	f.params["finger_position"] = &param{ptr: &f.FingerPosition, min: 0, max: 1}
	f.params["fingerboard"] = &param{ptr: &f.Fingerboard, min: -0.05, max: 0}
	f.params["board_stiffness"] = &param{ptr: &f.BoardStiffness, min: 0, max: 1e9}
	f.params["finger_force"] = &param{ptr: &f.finger.DownForce, min: 0, max: 1e3}
	return f
}

func (f *FingeredString) Name() string { return "fingered-string" }

func (f *FingeredString) SetParam(name string, value float64) error {
	return f.params.set(f.Name(), name, value)
}

// FingerState reports whether the finger is pressing.
func (f *FingeredString) FingerState() fds.FingerState { return f.finger.State }

// Trigger presses the finger and starts bowing.
func (f *FingeredString) Trigger() {
	f.finger.Position = f.FingerPosition
	f.finger.Trigger()
	f.BowedString.Trigger()
}

// Release lifts both the bow and the finger.
func (f *FingeredString) Release() {
	f.finger.Release()
	f.BowedString.Release()
}

func (f *FingeredString) Reset() {
	f.BowedString.Reset()
	f.finger.PointModel.Reset()
	f.finger.State = fds.FingerReleased
}

func (f *FingeredString) Process() (float64, error) {
	f.prepare()
	if f.Fingerboard < 0 {
		f.s.AddBarrierCollision(f.Fingerboard, f.BoardStiffness, 1)
		f.finger.AddBarrierCollision(f.Fingerboard, f.BoardStiffness, 1)
	}
	if err := f.finger.CollideWithString(f.s); err != nil {
		return 0, err
	}
	err := f.bow()
	f.finger.Compute()
	f.s.Compute()
	return f.velocityOutput(), err
}
