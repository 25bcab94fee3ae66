package fds

import "math"

// FingerState tracks a finger stopping a string.
type FingerState int

const (
	// FingerReleased is lifted off the string.
	FingerReleased FingerState = iota
	// FingerMoving is moving down but has not touched the string yet.
	FingerMoving
	// FingerDown is pressing the string.
	FingerDown
)

func (s FingerState) String() string {
	switch s {
	case FingerMoving:
		return "moving"
	case FingerDown:
		return "down"
	}
	return "released"
}

// Finger is a point mass that stops a string at a fractional position
// through a stiff linear coupling.
type Finger struct {
	*PointModel

	// Position along the string in [0, 1].
	Position float64
	// Coupling is the stiffness of the finger/string coupling (N/m).
	Coupling float64

	MoveForce float64
	DownForce float64
	Damping   float64

	State FingerState
}

// NewFinger creates a released 2 kg finger with a soft pad.
func NewFinger(sampleRate float64) *Finger {
	pm := NewPointModel(sampleRate)
	pm.Mass = 2
	pm.Pad = PowerLaw{Stiffness: 1e5, Alpha: 3}
	return &Finger{
		PointModel: pm,
		Position:   1,
		Coupling:   1e4,
		MoveForce:  5,
		DownForce:  100,
		Damping:    100,
	}
}

// Trigger starts pressing the finger from rest at the string.
func (f *Finger) Trigger() {
	f.U, f.Up = 0, 0
	f.State = FingerMoving
}

// Release lifts the finger.
func (f *Finger) Release() {
	f.State = FingerReleased
}

// CollideWithString couples the finger to the string. The coupling force
// is applied to the string at the finger position and its reaction to the
// finger. It has no effect while the finger is released.
func (f *Finger) CollideWithString(s *FieldModel) error {
	if f.State == FingerReleased {
		return nil
	}
	p := f.Position * float64(s.N-1)
	if err := s.checkPosition(p); err != nil {
		return err
	}
	d := f.U - s.U().Interpolate(p)
	if f.State == FingerMoving && d <= 0 {
		f.State = FingerDown
	}
	force := f.Coupling * d
	if err := s.AddInterpolatedForce(p, force); err != nil {
		return err
	}
	f.AddExternalForce(-force)
	return nil
}

// Compute applies the pressing forces and damping and advances the finger.
func (f *Finger) Compute() {
	switch f.State {
	case FingerMoving:
		f.AddExternalForce(-f.MoveForce)
	case FingerDown:
		f.AddExternalForce(-f.DownForce)
	case FingerReleased:
		if f.U < 0.01 {
			f.AddExternalForce(f.MoveForce)
		}
	}
	f.AddDamping(f.Damping)
	f.PointModel.Compute()
	if math.IsNaN(f.U) {
		f.PointModel.Reset()
	}
}
