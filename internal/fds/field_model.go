package fds

import (
	"fmt"
	"math"

	"github.com/san-kum/fdsynth/internal/solver"
	"github.com/sirupsen/logrus"
)

// FieldModel is a distributed mass of N points over a unit-length domain.
// The update at every point is
//
//	un[i] = (force[i] + 2*u[i] - up[i]) / divisor[i]
//
// after which the three state buffers rotate roles without copying.
type FieldModel struct {
	SampleRate float64
	K          float64 // sample period
	H          float64 // point spacing 1/N
	N          int

	material Material
	radius   float64 // m
	length   float64 // m

	area            float64
	momentOfInertia float64
	mass            float64
	linearDensity   float64
	derivedValid    bool

	// BoreArea is the cross-section S0 of the air column driven by
	// AddReedForce (m^2).
	BoreArea float64

	bufs            [3]*Field
	cur, prev, next int
	forces, divisor *Field

	// SolverOptions bounds the Newton solve of AddNewtonBowForce.
	SolverOptions solver.Options

	log *logrus.Entry
}

// NewFieldModel creates an N-point steel string of radius 0.3 mm and length
// 0.3 m with derived parameters already computed.
func NewFieldModel(n int, sampleRate float64) *FieldModel {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if n < 2 {
		n = 2
	}
	s := &FieldModel{
		SampleRate: sampleRate,
		K:          1 / sampleRate,
		H:          1 / float64(n),
		N:          n,
		material:   Steel(),
		radius:     0.0003,
		length:     0.3,
		BoreArea:   math.Pi * 0.0075 * 0.0075,
		bufs:       [3]*Field{NewField(n), NewField(n), NewField(n)},
		cur:        0,
		prev:       1,
		next:       2,
		forces:     NewField(n),
		divisor:    NewField(n),
	}
	s.SolverOptions = solver.DefaultOptions()
	s.log = logrus.WithField("component", "fds")
	s.divisor.Clear(1)
	s.CalculateDerivedParameters()
	return s
}

// SetLogger replaces the logger used for advisory diagnostics.
func (s *FieldModel) SetLogger(l *logrus.Entry) {
	if l != nil {
		s.log = l
	}
}

// U is the current displacement. Boundaries must be prepared on U before
// any force is added for the step.
func (s *FieldModel) U() *Field { return s.bufs[s.cur] }

// Up is the previous displacement.
func (s *FieldModel) Up() *Field { return s.bufs[s.prev] }

// Un is scratch written by Compute.
func (s *FieldModel) Un() *Field { return s.bufs[s.next] }

// Forces is the per-point force accumulator for the current step.
func (s *FieldModel) Forces() *Field { return s.forces }

// Divisor is the per-point implicit divisor for the current step.
func (s *FieldModel) Divisor() *Field { return s.divisor }

// Material returns the material of the model.
func (s *FieldModel) Material() Material { return s.material }

// Radius returns the cross-section radius in m.
func (s *FieldModel) Radius() float64 { return s.radius }

// Length returns the physical length in m.
func (s *FieldModel) Length() float64 { return s.length }

// SetMaterial copies the material and recomputes derived parameters.
func (s *FieldModel) SetMaterial(m Material) {
	s.material = m
	s.CalculateDerivedParameters()
}

// SetRadius changes the radius. Derived parameters become stale.
func (s *FieldModel) SetRadius(r float64) {
	s.radius = r
	s.derivedValid = false
}

// SetLength changes the physical length. Derived parameters become stale.
func (s *FieldModel) SetLength(l float64) {
	s.length = l
	s.derivedValid = false
}

// CalculateDerivedParameters computes area, mass, moment of inertia and
// linear density from the material and geometry.
func (s *FieldModel) CalculateDerivedParameters() {
	r := s.radius
	s.area = math.Pi * r * r
	s.mass = s.material.Density * s.area * s.length
	s.momentOfInertia = math.Pi * r * r * r * r / 4
	s.linearDensity = s.material.Density * s.area
	s.derivedValid = true
}

// Validate returns ErrStaleDerived when derived parameters need recomputing.
func (s *FieldModel) Validate() error {
	if !s.derivedValid {
		return ErrStaleDerived
	}
	if s.linearDensity <= 0 {
		return fmt.Errorf("%w: linear density %g", ErrStaleDerived, s.linearDensity)
	}
	return nil
}

// Area returns the cross-sectional area (m^2).
func (s *FieldModel) Area() (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	return s.area, nil
}

// Mass returns the total mass (kg).
func (s *FieldModel) Mass() (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	return s.mass, nil
}

// MomentOfInertia returns the area moment of inertia (m^4).
func (s *FieldModel) MomentOfInertia() (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	return s.momentOfInertia, nil
}

// LinearDensity returns the mass per unit length (kg/m).
func (s *FieldModel) LinearDensity() (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	return s.linearDensity, nil
}

// pointScale is N/linearDensity; it panics on stale derived parameters.
func (s *FieldModel) pointScale() float64 {
	if err := s.Validate(); err != nil {
		panic(err)
	}
	return float64(s.N) / s.linearDensity
}

// Kappa returns the stiffness coefficient sqrt(E*I/(rho*A)) of the material.
func (s *FieldModel) Kappa() float64 {
	if err := s.Validate(); err != nil {
		panic(err)
	}
	return math.Sqrt(s.material.YoungsModulus * s.momentOfInertia / s.linearDensity)
}

// AddTensionFreq adds the tension force of a string with wave speed freq on
// the unit domain.
func (s *FieldModel) AddTensionFreq(freq float64) {
	c := freq * freq * s.K * s.K
	u, f := s.U(), s.forces.Interior()
	for i := range f {
		f[i] += c * u.Dxx(i)
	}
}

// AddStiffness adds the bending stiffness derived from the material.
func (s *FieldModel) AddStiffness() {
	s.AddStiffnessKappa(s.Kappa())
}

// AddStiffnessKappa adds bending stiffness with the given kappa.
func (s *FieldModel) AddStiffnessKappa(kappa float64) {
	c := kappa * kappa * s.K * s.K
	u, f := s.U(), s.forces.Interior()
	for i := range f {
		f[i] -= c * u.Dxxxx(i)
	}
}

// AddDamping adds frequency independent damping sigma0 (1/s) at every point.
func (s *FieldModel) AddDamping(sigma0 float64) {
	ks := s.K * sigma0
	up, f, d := s.Up().Interior(), s.forces.Interior(), s.divisor.Interior()
	for i := range f {
		f[i] += ks * up[i]
		d[i] += ks
	}
}

// AddFrequencyDependentDamping adds damping that grows with spatial
// frequency, controlled by sigma1.
func (s *FieldModel) AddFrequencyDependentDamping(sigma1 float64) {
	c := 2 * s.K * sigma1
	u, up, f := s.U(), s.Up(), s.forces.Interior()
	for i := range f {
		f[i] += c * (u.Dxx(i) - up.Dxx(i))
	}
}

// AddExternalForce adds a force (N) at point i.
func (s *FieldModel) AddExternalForce(i int, force float64) {
	*s.forces.Ref(i) += s.pointScale() * s.K * s.K * force
}

// AddInterpolatedForce spreads a force over the two points nearest to the
// fractional position p, keeping the total force.
func (s *FieldModel) AddInterpolatedForce(p, force float64) error {
	if err := s.checkPosition(p); err != nil {
		return err
	}
	i1 := math.Floor(p)
	i2 := math.Ceil(p)
	a := p - i1
	s.AddExternalForce(int(i1), (1-a)*force)
	s.AddExternalForce(int(i2), a*force)
	return nil
}

// checkPosition rejects fractional positions outside [0, N-1].
func (s *FieldModel) checkPosition(p float64) error {
	if p < 0 || p > float64(s.N-1) || math.IsNaN(p) {
		return fmt.Errorf("%w: %g not in [0, %d]", ErrInvalidPosition, p, s.N-1)
	}
	return nil
}

// AddBarrierCollision adds a one-sided contact with a barrier at b below
// every point, K*pos(b-u)^(alpha+1).
func (s *FieldModel) AddBarrierCollision(b, stiffness, alpha float64) {
	s.AddContact(b, PowerLaw{Stiffness: stiffness, Alpha: alpha})
}

// AddContact adds the force of law for the penetration b-u at every point.
func (s *FieldModel) AddContact(b float64, law ContactLaw) {
	c := s.pointScale() * s.K * s.K
	u, f := s.U().Interior(), s.forces.Interior()
	for i := range f {
		f[i] += c * law.CollisionForce(b-u[i])
	}
}

func (s *FieldModel) relativeVelocity(i int, vb float64) float64 {
	return s.SampleRate*(s.U().At(i)-s.Up().At(i)) - vb
}

// AddContinuousBowForce adds an explicit bow at point i with the continuous
// friction curve sqrt(2a)*v*exp(-a*v^2+1/2).
func (s *FieldModel) AddContinuousBowForce(i int, vb, fb, alpha float64) {
	eta := s.relativeVelocity(i, vb)
	f := s.pointScale() * fb * continuousFriction(eta, alpha)
	*s.forces.Ref(i) -= s.K * s.K * f
}

// AddExponentialBowForce adds an explicit bow at point i with the
// exponential friction curve sgn(v)*(eps+(1-eps)*exp(-a|v|)).
func (s *FieldModel) AddExponentialBowForce(i int, vb, fb, a, epsilon float64) {
	eta := s.relativeVelocity(i, vb)
	f := s.pointScale() * fb * Sgn(eta) * (epsilon + (1-epsilon)*math.Exp(-a*math.Abs(eta)))
	*s.forces.Ref(i) -= s.K * s.K * f
}

// AddTanhBowForce adds an explicit bow at point i with friction tanh(a*v).
func (s *FieldModel) AddTanhBowForce(i int, vb, fb, a float64) {
	eta := s.relativeVelocity(i, vb)
	f := s.pointScale() * fb * math.Tanh(a*eta)
	*s.forces.Ref(i) -= s.K * s.K * f
}

// ComputeForPoint evaluates the update at point i without committing it.
func (s *FieldModel) ComputeForPoint(i int) float64 {
	return (s.forces.At(i) + 2*s.U().At(i) - s.Up().At(i)) / s.divisor.At(i)
}

// Compute applies the accumulated forces, rotates the state buffers and
// clears the accumulators.
func (s *FieldModel) Compute() {
	u, up, un := s.U().Interior(), s.Up().Interior(), s.Un().Interior()
	f, d := s.forces.Interior(), s.divisor.Interior()
	for i := range un {
		un[i] = (f[i] + 2*u[i] - up[i]) / d[i]
	}

	s.prev, s.cur, s.next = s.cur, s.next, s.prev

	s.forces.Clear(0)
	s.divisor.Clear(1)
}

// Reset zeroes all state buffers and accumulators.
func (s *FieldModel) Reset() {
	for _, b := range s.bufs {
		b.Clear(0)
	}
	s.forces.Clear(0)
	s.divisor.Clear(1)
}

func continuousFriction(v, alpha float64) float64 {
	return math.Sqrt(2*alpha) * v * math.Exp(-alpha*v*v+0.5)
}

func continuousFrictionDerivative(v, alpha float64) float64 {
	e := math.Exp(-alpha*v*v + 0.5)
	return math.Sqrt(2*alpha) * (e - 2*alpha*v*v*e)
}
