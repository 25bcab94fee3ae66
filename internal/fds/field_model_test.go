package fds

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pluck seeds a triangular displacement peaking at index at into both the
// current and previous buffers so the string starts at rest.
func pluck(s *FieldModel, amp float64, at int) {
	last := s.N - 1
	for i := 0; i < s.N; i++ {
		var v float64
		if i <= at {
			v = amp * float64(i) / float64(at)
		} else {
			v = amp * float64(last-i) / float64(last-at)
		}
		*s.U().Ref(i) = v
		*s.Up().Ref(i) = v
	}
}

func TestNewFieldModelDefaults(t *testing.T) {
	s := NewFieldModel(100, 44100)
	assert.Equal(t, 100, s.N)
	assert.Equal(t, 0.01, s.H)
	assert.Equal(t, "steel", s.Material().Name)
	assert.Equal(t, 0.0003, s.Radius())
	assert.Equal(t, 0.3, s.Length())
	require.NoError(t, s.Validate())

	area, err := s.Area()
	require.NoError(t, err)
	assert.InDelta(t, math.Pi*9e-8, area, 1e-15)

	rhoA, err := s.LinearDensity()
	require.NoError(t, err)
	assert.InDelta(t, 8000*area, rhoA, 1e-12)

	mass, err := s.Mass()
	require.NoError(t, err)
	assert.InDelta(t, rhoA*0.3, mass, 1e-12)

	inertia, err := s.MomentOfInertia()
	require.NoError(t, err)
	assert.InDelta(t, math.Pi*math.Pow(0.0003, 4)/4, inertia, 1e-20)

	for _, v := range s.Divisor().Data() {
		assert.Equal(t, 1.0, v)
	}
}

func TestFieldModelRestStaysAtRest(t *testing.T) {
	s := NewFieldModel(50, 44100)
	for n := 0; n < 500; n++ {
		s.U().PrepareBoundaries(Clamped, Clamped)
		s.AddTensionFreq(300)
		s.AddStiffness()
		s.AddDamping(1)
		s.AddFrequencyDependentDamping(1e-5)
		s.AddBarrierCollision(-0.01, 1e8, 1)
		s.AddContinuousBowForce(10, 0, 1, 100)
		s.AddExponentialBowForce(12, 0, 1, 10, 0.1)
		s.AddTanhBowForce(14, 0, 1, 100)
		require.NoError(t, s.AddNewtonBowForce(8, 0, 1, 100))
		s.Compute()
	}
	for _, b := range []*Field{s.U(), s.Up()} {
		for _, v := range b.Interior() {
			require.Equal(t, 0.0, v)
		}
	}
}

func TestFieldModelBufferRotation(t *testing.T) {
	s := NewFieldModel(10, 44100)
	u, up, un := s.U(), s.Up(), s.Un()

	s.Compute()
	assert.Same(t, un, s.U())
	assert.Same(t, u, s.Up())
	assert.Same(t, up, s.Un())

	s.Compute()
	s.Compute()
	assert.Same(t, u, s.U())
	assert.Same(t, up, s.Up())
	assert.Same(t, un, s.Un())
}

func TestFieldModelComputeClearsAccumulators(t *testing.T) {
	s := NewFieldModel(10, 44100)
	s.AddExternalForce(3, 1)
	s.AddDamping(10)

	expected := s.ComputeForPoint(3)
	s.Compute()
	assert.Equal(t, expected, s.U().At(3))
	for _, v := range s.Forces().Interior() {
		assert.Equal(t, 0.0, v)
	}
	for _, v := range s.Divisor().Interior() {
		assert.Equal(t, 1.0, v)
	}
}

func TestFieldModelPluckedPitch(t *testing.T) {
	const sr = 44100
	s := NewFieldModel(100, sr)
	pluck(s, 0.001, 30)

	crossings := 0
	prev := s.U().At(20)
	for n := 0; n < sr; n++ {
		s.U().PrepareBoundaries(Clamped, Clamped)
		s.AddTensionFreq(440)
		s.AddStiffness()
		s.AddDamping(2)
		s.Compute()
		y := s.U().At(20)
		if prev < 0 && y >= 0 {
			crossings++
		}
		prev = y
	}
	// Clamped halos put the fixed ends one spacing outside the interior,
	// so the fundamental is 440/(2*1.01).
	assert.InDelta(t, 218, crossings, 4)
}

func TestFieldModelDampedDecay(t *testing.T) {
	s := NewFieldModel(100, 44100)
	pluck(s, 0.001, 30)

	window := func() float64 {
		var p float64
		for n := 0; n < 4410; n++ {
			s.U().PrepareBoundaries(Clamped, Clamped)
			s.AddTensionFreq(440)
			s.AddDamping(2)
			s.AddFrequencyDependentDamping(1e-5)
			s.Compute()
			p = math.Max(p, math.Abs(s.U().At(20)))
		}
		return p
	}

	first := window()
	var last float64
	for i := 0; i < 9; i++ {
		last = window()
	}
	assert.Less(t, last, first/2)
	assert.False(t, math.IsNaN(last))
}

func TestFieldModelStaleDerived(t *testing.T) {
	s := NewFieldModel(20, 44100)
	s.SetRadius(0.001)

	assert.ErrorIs(t, s.Validate(), ErrStaleDerived)
	_, err := s.Area()
	assert.ErrorIs(t, err, ErrStaleDerived)
	_, err = s.LinearDensity()
	assert.ErrorIs(t, err, ErrStaleDerived)

	assert.PanicsWithError(t, ErrStaleDerived.Error(), func() {
		s.AddExternalForce(3, 1)
	})
	assert.Panics(t, func() { s.AddStiffness() })

	s.CalculateDerivedParameters()
	require.NoError(t, s.Validate())
	area, err := s.Area()
	require.NoError(t, err)
	assert.InDelta(t, math.Pi*1e-6, area, 1e-15)

	s.SetLength(0.5)
	assert.ErrorIs(t, s.Validate(), ErrStaleDerived)

	// SetMaterial recomputes on its own.
	s.SetMaterial(Nylon())
	require.NoError(t, s.Validate())
	mass, err := s.Mass()
	require.NoError(t, err)
	assert.InDelta(t, 1140*math.Pi*1e-6*0.5, mass, 1e-12)
}

func TestFieldModelInterpolatedForceKeepsTotal(t *testing.T) {
	s := NewFieldModel(20, 44100)
	rhoA, err := s.LinearDensity()
	require.NoError(t, err)
	scale := float64(s.N) / rhoA * s.K * s.K

	require.NoError(t, s.AddInterpolatedForce(4.25, 2))

	f := s.Forces()
	assert.InDelta(t, 0.75*2*scale, f.At(4), 1e-15)
	assert.InDelta(t, 0.25*2*scale, f.At(5), 1e-15)

	var total float64
	for _, v := range f.Interior() {
		total += v
	}
	assert.InDelta(t, 2*scale, total, 1e-15)
}

func TestFieldModelInterpolatedForceOutsideDomain(t *testing.T) {
	s := NewFieldModel(20, 44100)
	for _, p := range []float64{-0.5, 19.5, math.NaN()} {
		err := s.AddInterpolatedForce(p, 1)
		assert.True(t, errors.Is(err, ErrInvalidPosition), "p=%v", p)
	}
	for _, v := range s.Forces().Interior() {
		assert.Equal(t, 0.0, v)
	}
}

func TestFieldModelBarrierOnlyPushesPenetratingPoints(t *testing.T) {
	s := NewFieldModel(10, 44100)
	*s.U().Ref(3) = -0.002
	s.AddBarrierCollision(-0.001, 1e6, 1)

	f := s.Forces()
	assert.Greater(t, f.At(3), 0.0)
	for i := 0; i < s.N; i++ {
		if i != 3 {
			assert.Equal(t, 0.0, f.At(i))
		}
	}
}

func TestFieldModelStiffnessKappaMatchesMaterial(t *testing.T) {
	a := NewFieldModel(20, 44100)
	b := NewFieldModel(20, 44100)
	pluck(a, 0.001, 7)
	pluck(b, 0.001, 7)

	a.AddStiffness()
	b.AddStiffnessKappa(a.Kappa())
	assert.Equal(t, a.Forces().Data(), b.Forces().Data())
}

func TestFieldModelBowsExciteString(t *testing.T) {
	bows := map[string]func(s *FieldModel){
		"continuous":  func(s *FieldModel) { s.AddContinuousBowForce(9, 0.2, 0.4, 100) },
		"exponential": func(s *FieldModel) { s.AddExponentialBowForce(9, 0.2, 0.4, 10, 0.1) },
		"tanh":        func(s *FieldModel) { s.AddTanhBowForce(9, 0.2, 0.4, 100) },
	}
	for name, bow := range bows {
		t.Run(name, func(t *testing.T) {
			s := NewFieldModel(100, 44100)
			for n := 0; n < 2000; n++ {
				s.U().PrepareBoundaries(Clamped, Clamped)
				s.AddTensionFreq(220)
				s.AddDamping(1)
				bow(s)
				s.Compute()
			}
			y := s.U().At(30)
			assert.False(t, math.IsNaN(y))
			assert.NotZero(t, y)
		})
	}
}

func TestFieldModelNewtonBow(t *testing.T) {
	s := NewFieldModel(100, 44100)

	var failures int
	var peak float64
	for n := 0; n < 4000; n++ {
		s.U().PrepareBoundaries(Clamped, Clamped)
		s.AddTensionFreq(220)
		s.AddStiffness()
		s.AddDamping(1)
		err := s.AddNewtonBowForce(9, 0.2, 0.4, 100)
		if n < 100 {
			require.NoError(t, err, "sample %d", n)
		}
		if err != nil {
			failures++
		}
		s.Compute()
		for _, v := range s.U().Interior() {
			require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "sample %d", n)
		}
		peak = math.Max(peak, math.Abs(s.U().At(30)))
	}
	assert.Greater(t, peak, 1e-6)
	assert.Less(t, failures, 4000)
}

func TestFieldModelNewtonBowLandsOnRoot(t *testing.T) {
	const (
		bowAt = 9
		vb    = 0.2
		fb    = 0.4
		alpha = 100.0
	)
	s := NewFieldModel(100, 44100)
	s.SolverOptions.Tolerance = 1e-12

	converged := 0
	for n := 0; n < 2000; n++ {
		s.U().PrepareBoundaries(Clamped, Clamped)
		s.AddTensionFreq(220)
		s.AddStiffness()
		s.AddDamping(1)

		base := s.Forces().At(bowAt)
		err := s.AddNewtonBowForce(bowAt, vb, fb, alpha)
		if n < 100 {
			require.NoError(t, err, "sample %d", n)
		}
		if err == nil {
			converged++
			applied := base - s.Forces().At(bowAt)
			// Relative velocity produced by the update with this force.
			vrel := (s.ComputeForPoint(bowAt)-s.Up().At(bowAt))/(2*s.K) - vb
			gain := s.K * s.K * s.pointScale() * fb
			want := gain * continuousFriction(vrel, alpha)
			require.InDelta(t, want, applied, 1e-6*math.Abs(want)+1e-9*gain, "sample %d", n)
		}
		s.Compute()
	}
	assert.GreaterOrEqual(t, converged, 100)
}

func TestFieldModelNewtonBowRespectsIterationCap(t *testing.T) {
	s := NewFieldModel(100, 44100)
	s.SolverOptions.MaxIterations = 1
	s.SolverOptions.Tolerance = 1e-300

	err := s.AddNewtonBowForce(9, 0.2, 0.4, 100)
	require.Error(t, err)
	// The last iterate is still applied.
	assert.NotZero(t, s.Forces().At(9))
}

func TestFieldModelReset(t *testing.T) {
	s := NewFieldModel(10, 44100)
	pluck(s, 0.01, 4)
	s.AddExternalForce(2, 1)
	s.AddDamping(3)
	s.Reset()

	for _, b := range []*Field{s.U(), s.Up(), s.Un(), s.Forces()} {
		for _, v := range b.Data() {
			assert.Equal(t, 0.0, v)
		}
	}
	for _, v := range s.Divisor().Data() {
		assert.Equal(t, 1.0, v)
	}
}
