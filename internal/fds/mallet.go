package fds

// Mallet is a lumped striker whose only force is a contact force against
// an external point, typically the displacement of a string under it.
type Mallet struct {
	SampleRate float64
	K          float64

	Mass      float64 // kg
	Stiffness float64
	Alpha     float64 // felt compression exponent

	// Law overrides the HertzLaw built from Stiffness and Alpha.
	Law ContactLaw

	U, Up float64
	force float64
}

// NewMallet creates a 10 g mallet resting 0.1 m away from the string.
func NewMallet(sampleRate float64) *Mallet {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Mallet{
		SampleRate: sampleRate,
		K:          1 / sampleRate,
		Mass:       0.01,
		Stiffness:  5000,
		Alpha:      1.2,
		U:          -0.1,
		Up:         -0.1,
	}
}

// Trigger starts a strike from the given distance moving at velocity (m/s).
func (m *Mallet) Trigger(position, velocity float64) {
	m.U = -position
	m.Up = m.U - m.K*velocity
}

// ComputeAndApplyImpactForce computes the contact force against a point at
// uOther, applies the reaction to the mallet and returns the force so the
// caller can apply it to the other object.
func (m *Mallet) ComputeAndApplyImpactForce(uOther float64) float64 {
	law := m.Law
	if law == nil {
		law = HertzLaw{Stiffness: m.Stiffness, Alpha: m.Alpha}
	}
	f := law.CollisionForce(m.U - uOther)
	m.force -= (1 / m.Mass) * m.K * m.K * f
	return f
}

// Velocity is the backward-difference velocity of the mallet.
func (m *Mallet) Velocity() float64 { return (m.U - m.Up) * m.SampleRate }

// Compute advances the mallet one sample and clears the force.
func (m *Mallet) Compute() {
	un := m.force + 2*m.U - m.Up
	m.Up = m.U
	m.U = un
	m.force = 0
}
