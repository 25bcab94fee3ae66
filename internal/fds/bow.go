package fds

import "github.com/san-kum/fdsynth/internal/solver"

// AddNewtonBowForce adds a bow at point i whose continuous friction force
// is solved implicitly together with the update of that point. It must be
// called after every other force for the step has been added, since the
// solve reads the accumulated force at i.
//
// When the solve fails the force of the last iterate is applied if it is
// finite and skipped otherwise; the solver error is returned either way.
func (s *FieldModel) AddNewtonBowForce(i int, vb, fb, alpha float64) error {
	u, up := s.U().At(i), s.Up().At(i)
	base := s.forces.At(i)
	div := s.divisor.At(i)
	k2 := s.K * s.K
	gain := k2 * s.pointScale() * fb
	c := 1 / (2 * s.K)

	residual := func(vrel float64) (float64, float64) {
		un := (base - gain*continuousFriction(vrel, alpha) + 2*u - up) / div
		r := c*(un-up) - vb - vrel
		dr := -c*(1/div)*gain*continuousFrictionDerivative(vrel, alpha) - 1
		return r, dr
	}

	// Initial guess from the backward difference.
	vrel0 := s.SampleRate*(u-up) - vb
	res, err := solver.Newton(residual, vrel0, s.SolverOptions)

	f := gain * continuousFriction(res.Root, alpha)
	if err != nil && !isFinite(f) {
		return err
	}
	*s.forces.Ref(i) -= f
	return err
}
