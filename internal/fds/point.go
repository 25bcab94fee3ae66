package fds

import "math"

// DefaultSampleRate is used when a model is created with a non-positive rate.
const DefaultSampleRate = 44100

// PointModel is a lumped mass moving in one dimension. Each step it applies
//
//	next = (force + 2*u - up) / divisor
//
// where forces accumulate into force and implicit linear terms (damping)
// accumulate into divisor. Both are reset by Compute.
type PointModel struct {
	SampleRate float64
	// K is the sample period 1/SampleRate.
	K float64
	// Mass in kg.
	Mass float64

	// U is the current position (m), Up the previous one.
	U, Up float64
	// Un is scratch written by Compute.
	Un float64

	force   float64
	divisor float64

	// Pad is an optional contact law engaged together with every barrier
	// collision, e.g. the soft tissue of a finger.
	Pad ContactLaw
}

// NewPointModel creates a 1 g mass at rest.
func NewPointModel(sampleRate float64) *PointModel {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &PointModel{
		SampleRate: sampleRate,
		K:          1 / sampleRate,
		Mass:       0.001,
		divisor:    1,
	}
}

// Force returns the force accumulated for the current step.
func (m *PointModel) Force() float64 { return m.force }

// Divisor returns the implicit divisor accumulated for the current step.
func (m *PointModel) Divisor() float64 { return m.divisor }

// Velocity is the backward-difference velocity (u-up)/k.
func (m *PointModel) Velocity() float64 { return (m.U - m.Up) * m.SampleRate }

// SetState places the mass at u moving with velocity v.
func (m *PointModel) SetState(u, v float64) {
	m.U = u
	m.Up = u - m.K*v
}

// AddExternalForce adds a force f in Newtons.
func (m *PointModel) AddExternalForce(f float64) {
	m.force += (1 / m.Mass) * m.K * m.K * f
}

// AddSpringForce adds a Hooke spring of constant c tied to u0.
func (m *PointModel) AddSpringForce(u0, c float64) {
	m.force -= (1 / m.Mass) * c * m.K * m.K * (m.U - u0)
}

// AddSpringForceFreq adds a spring tuned to oscillate at frequency f (Hz),
// independent of the mass.
func (m *PointModel) AddSpringForceFreq(u0, f float64) {
	omega := 2 * math.Pi * f
	m.force -= omega * omega * m.K * m.K * (m.U - u0)
}

// AddNonLinearSpringForce adds a hardening spring -c*(u-u0)^3.
func (m *PointModel) AddNonLinearSpringForce(u0, c float64) {
	d := m.U - u0
	m.force -= (1 / m.Mass) * c * m.K * m.K * d * d * d
}

// AddNonLinearSpringForceFreq adds a hardening spring with c = (2*pi*f)^4.
func (m *PointModel) AddNonLinearSpringForceFreq(u0, f float64) {
	omega := 2 * math.Pi * f
	d := m.U - u0
	m.force -= omega * omega * omega * omega * m.K * m.K * d * d * d
}

// AddDamping adds frequency independent damping sigma0 (1/s). The term is
// treated implicitly through the divisor.
func (m *PointModel) AddDamping(sigma0 float64) {
	m.force += m.K * sigma0 * m.Up
	m.divisor += m.K * sigma0
}

// AddBowForce adds the exponential friction curve of a bow moving at vb
// (m/s) pressed with fb (N). a and epsilon shape the curve; 10 and 0.1 are
// typical. The force opposes the relative velocity, dragging the mass along
// with the bow.
func (m *PointModel) AddBowForce(vb, fb, a, epsilon float64) {
	eta := m.SampleRate*(m.U-m.Up) - vb
	f := (1 / m.Mass) * fb * Sgn(eta) * (epsilon + (1-epsilon)*math.Exp(-a*math.Abs(eta)))
	m.force -= m.K * m.K * f
}

// AddBarrierCollision adds a one-sided contact K*pos(b-u)^(alpha+1) with an
// obstacle at b below the mass, plus the Pad law when one is set.
func (m *PointModel) AddBarrierCollision(b, stiffness, alpha float64) {
	m.AddContact(b, PowerLaw{Stiffness: stiffness, Alpha: alpha})
}

// AddContact adds the force of law for the penetration b-u. A Pad is
// stacked on top of law.
func (m *PointModel) AddContact(b float64, law ContactLaw) {
	var f float64
	if m.Pad != nil {
		f = StackedLaw{law, m.Pad}.CollisionForce(b - m.U)
	} else {
		f = law.CollisionForce(b - m.U)
	}
	m.force += (1 / m.Mass) * m.K * m.K * f
}

// ComputeForPoint evaluates the update without committing it.
func (m *PointModel) ComputeForPoint() float64 {
	return (m.force + 2*m.U - m.Up) / m.divisor
}

// Compute applies the accumulated forces and advances the state one sample.
func (m *PointModel) Compute() {
	m.Un = m.ComputeForPoint()
	m.Up = m.U
	m.U = m.Un

	m.force = 0
	m.divisor = 1
}

// Reset puts the mass at rest at the origin and clears the accumulators.
func (m *PointModel) Reset() {
	m.U, m.Up, m.Un = 0, 0, 0
	m.force = 0
	m.divisor = 1
}
