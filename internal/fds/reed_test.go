package fds

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReedDefaults(t *testing.T) {
	r := NewReed(44100)
	p := r.Parameters()
	assert.Equal(t, 4e-4, p.Height)
	assert.Equal(t, 3.0, p.Alpha)
	assert.InDelta(t, 2*math.Pi*3700, p.Omega0, 1e-9)
	assert.Equal(t, p.Height, r.Opening())

	r.SetDisplacement(-0.5, 0)
	y, yp := r.Displacement()
	assert.Equal(t, -0.5, y)
	assert.Equal(t, 0.0, yp)
	assert.InDelta(t, -0.5*44100, r.Velocity(), 1e-9)
	assert.InDelta(t, 2e-4, r.Opening(), 1e-12)
}

func TestReedSilentWithoutMouthPressure(t *testing.T) {
	s := NewFieldModel(100, 44100)
	r := NewReed(44100)

	for n := 0; n < 1000; n++ {
		s.U().PrepareClampedBoundaryRight()
		flow := s.AddReedForce(r, 200, 0)
		require.Equal(t, 0.0, flow.DeltaP)
		require.Equal(t, 0.0, flow.Pin)
		s.AddTensionFreq(200)
		s.AddDamping(0.1)
		s.Compute()
	}
	assert.Equal(t, 0.0, r.Y)
	for _, v := range s.U().Interior() {
		assert.Equal(t, 0.0, v)
	}
}

func TestReedDrivesBore(t *testing.T) {
	s := NewFieldModel(100, 44100)
	r := NewReed(44100)

	var peak float64
	for n := 0; n < 22050; n++ {
		s.U().PrepareClampedBoundaryRight()
		flow := s.AddReedForce(r, 200, 0.0134)
		require.False(t, math.IsNaN(flow.DeltaP), "sample %d", n)
		require.InDelta(t, r.Opening(), flow.Opening, 1e-12)
		require.InDelta(t, 0.0134-flow.DeltaP, flow.Pin, 1e-12)
		s.AddTensionFreq(200)
		s.AddDamping(0.1)
		s.Compute()
		y := s.U().At(50)
		require.False(t, math.IsNaN(y) || math.IsInf(y, 0), "sample %d", n)
		peak = math.Max(peak, math.Abs(y))
	}
	assert.Greater(t, peak, 0.0)
}

func TestReedPressureRoot(t *testing.T) {
	for _, d1 := range []float64{0, 1e-3, 0.5, 40, 1e6, -0.3} {
		for _, d2 := range []float64{0, 1e-12, -2e-5, 0.7, -130, 5e4} {
			p := reedPressure(d1, d2)
			x := math.Sqrt(math.Abs(p))
			lhs := math.Abs(p) + d1*x
			tol := 1e-12 * (math.Abs(p) + math.Abs(d1*x) + math.Abs(d2))
			assert.InDelta(t, math.Abs(d2), lhs, tol, "d1=%g d2=%g", d1, d2)
			if d2 != 0 {
				assert.Equal(t, -Sgn(d2), Sgn(p), "d1=%g d2=%g", d1, d2)
			}
		}
	}
}

// reedCoefficients recomputes the linear terms d1, d2 of the pressure
// equation for the current state of s and r.
func reedCoefficients(s *FieldModel, r *Reed, wavespeed, pm float64) (d1, d2 float64) {
	rp := r.Parameters()
	k := s.K
	rho := s.Material().Density
	gamma := wavespeed / s.Length()

	o := (rho * wavespeed * wavespeed * rp.Area) / (rp.Mass * rp.Height)
	rr := math.Sqrt2 * (rp.Width * rp.Height) / s.BoreArea
	sc := (rp.Area * rp.Height) / (wavespeed * s.BoreArea)

	eta := math.Pow(math.Abs(Neg(r.Y+1)), rp.Alpha-1)
	w1 := math.Pow(rp.Omega1, rp.Alpha+1)
	w02 := rp.Omega0 * rp.Omega0

	a1 := -(2/k)*r.Velocity() + w02*r.Yp - w1*(r.Yp+1)*eta
	a2 := 2/k + 2*rp.Sigma0 + k*w02 - k*w1*eta

	b1 := a2 / (sc * o) * rr * Pos(r.Y+1)
	b2 := a1 / o
	b3 := a2 / (sc * o)

	u, up := s.U(), s.Up()
	c1 := -s.H / (k * gamma)
	c2 := s.H/(k*gamma)*pm - s.H/(k*gamma*gamma)*s.SampleRate*(u.At(0)-up.At(0)) - u.Dxf(0)

	return b1 / (1 - b3*c1), (b2 - b3*c2) / (1 - b3*c1)
}

func TestReedForceSolvesPressureEquation(t *testing.T) {
	const wavespeed, pm = 200, 0.0134
	s := NewFieldModel(100, 44100)
	r := NewReed(44100)

	for n := 0; n < 600; n++ {
		s.U().PrepareClampedBoundaryRight()
		if n%50 == 49 {
			d1, d2 := reedCoefficients(s, r, wavespeed, pm)
			flow := s.AddReedForce(r, wavespeed, pm)

			abs := math.Abs(flow.DeltaP)
			lhs := abs + d1*math.Sqrt(abs)
			tol := 1e-9 * (abs + math.Abs(d1)*math.Sqrt(abs) + math.Abs(d2))
			require.InDelta(t, math.Abs(d2), lhs, tol, "sample %d", n)
		} else {
			s.AddReedForce(r, wavespeed, pm)
		}
		s.AddTensionFreq(200)
		s.AddDamping(0.1)
		s.Compute()
	}
}

func TestReedWritesInflowHalo(t *testing.T) {
	s := NewFieldModel(100, 44100)
	r := NewReed(44100)

	flow := s.AddReedForce(r, 200, 0.0134)
	gamma := 200 / s.Length()
	assert.InDelta(t, 2*s.K*gamma*flow.Pin, s.U().At(-1), 1e-15)
}

func TestReedSignChecksLogAtDebugOnly(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	s := NewFieldModel(100, 44100)
	s.SetLogger(logger.WithField("component", "reed-test"))
	r := NewReed(44100)
	for n := 0; n < 2000; n++ {
		s.U().PrepareClampedBoundaryRight()
		s.AddReedForce(r, 200, 0.0134)
		s.AddTensionFreq(200)
		s.Compute()
	}
	for _, e := range hook.AllEntries() {
		assert.Equal(t, logrus.DebugLevel, e.Level)
		assert.Contains(t, e.Data, "term")
	}

	// Suction at rest makes c2 negative.
	hook.Reset()
	quiet := NewFieldModel(100, 44100)
	quiet.SetLogger(logger.WithField("component", "reed-test"))
	quiet.AddReedForce(NewReed(44100), 200, -0.01)
	require.NotEmpty(t, hook.AllEntries())
	var terms []interface{}
	for _, e := range hook.AllEntries() {
		assert.Equal(t, logrus.DebugLevel, e.Level)
		terms = append(terms, e.Data["term"])
	}
	assert.Contains(t, terms, "c2")

	hook.Reset()
	logger.SetLevel(logrus.InfoLevel)
	for n := 0; n < 100; n++ {
		s.AddReedForce(r, 200, 0.0134)
		s.Compute()
	}
	assert.Empty(t, hook.AllEntries())
}
