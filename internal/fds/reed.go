package fds

import (
	"math"

	"github.com/sirupsen/logrus"
)

// ReedParameters describe the reed and its channel.
type ReedParameters struct {
	Area   float64 // Sr, effective reed surface (m^2)
	Mass   float64 // Mr, reed mass (kg)
	Height float64 // H0, channel height at rest (m)
	Width  float64 // w, channel width (m)
	Omega0 float64 // reed resonance (rad/s)
	Omega1 float64 // lay collision stiffness (rad/s)
	Alpha  float64 // lay collision exponent
	Sigma0 float64 // reed damping (1/s)
}

// ReedState is the collaborator driven by FieldModel.AddReedForce. The
// displacement y is normalized by the channel height, so y = -1 closes the
// channel.
type ReedState interface {
	Parameters() ReedParameters
	Displacement() (y, yp float64)
	SetDisplacement(y, yp float64)
	// Velocity is the backward-difference velocity of y.
	Velocity() float64
}

// Reed is a single-reed oscillator with clarinet-like defaults.
type Reed struct {
	ReedParameters
	SampleRate float64
	Y, Yp      float64
}

// NewReed creates a reed at rest.
func NewReed(sampleRate float64) *Reed {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Reed{
		ReedParameters: ReedParameters{
			Area:   1.46e-4,
			Mass:   3.37e-6,
			Height: 4e-4,
			Width:  0.012,
			Omega0: 2 * math.Pi * 3700,
			Omega1: 316,
			Alpha:  3,
			Sigma0: 1500,
		},
		SampleRate: sampleRate,
	}
}

func (r *Reed) Parameters() ReedParameters       { return r.ReedParameters }
func (r *Reed) Displacement() (float64, float64) { return r.Y, r.Yp }
func (r *Reed) SetDisplacement(y, yp float64)    { r.Y, r.Yp = y, yp }
func (r *Reed) Velocity() float64                { return (r.Y - r.Yp) * r.SampleRate }

// Opening returns the channel height in m.
func (r *Reed) Opening() float64 { return r.Y*r.Height + r.Height }

// ReedFlow is the result of one reed coupling step.
type ReedFlow struct {
	// DeltaP is the pressure difference across the reed.
	DeltaP float64
	// Pin is the pressure entering the bore.
	Pin float64
	// Opening is the new channel height in m.
	Opening float64
}

// AddReedForce couples reed to the left end of the bore. wavespeed is the
// speed of sound (m/s) and pm the mouth pressure (Pa). The pressure
// difference is solved in closed form, the reed is advanced one step and the
// bore inflow is written as a velocity condition into the left halo of U.
// The field's material density is used as the air density.
func (s *FieldModel) AddReedForce(reed ReedState, wavespeed, pm float64) ReedFlow {
	rp := reed.Parameters()
	y, yp := reed.Displacement()
	k := s.K
	h := s.H
	rho := s.material.Density

	gamma := wavespeed / s.length

	o := (rho * wavespeed * wavespeed * rp.Area) / (rp.Mass * rp.Height)
	r := math.Sqrt2 * ((rp.Width * rp.Height) / s.BoreArea)
	sc := (rp.Area * rp.Height) / (wavespeed * s.BoreArea)

	// Lay collision terms vanish while the channel is open (y > -1).
	eta := math.Pow(math.Abs(Neg(y+1)), rp.Alpha-1)
	w1 := math.Pow(rp.Omega1, rp.Alpha+1)
	w02 := rp.Omega0 * rp.Omega0

	a1 := -(2/k)*reed.Velocity() + w02*yp - w1*(yp+1)*eta
	a2 := (2 / k) + 2*rp.Sigma0 + k*w02 - k*w1*eta

	b1 := (a2 / (sc * o)) * r * Pos(y+1)
	b2 := a1 / o
	b3 := a2 / (sc * o)

	u, up := s.U(), s.Up()
	c1 := -(h / (k * gamma))
	c2 := (h/(k*gamma))*pm - (h/(k*gamma*gamma))*s.SampleRate*(u.At(0)-up.At(0)) - u.Dxf(0)

	d1 := b1 / (1 - b3*c1)
	d2 := (b2 - b3*c2) / (1 - b3*c1)

	if s.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		s.checkReedSigns(a2, b1, b3, c2, d1)
	}

	pdelta := reedPressure(d1, d2)

	k2 := k * k
	num := -o*pdelta*k2 + 0.5*eta*yp*k2*w1 + eta*k2*w1 + k*rp.Sigma0*yp + 2*y - 0.5*yp*k2*w02 - yp
	den := -0.5*eta*k2*w1 + k*rp.Sigma0 + 0.5*k2*w02 + 1
	yn := num / den
	reed.SetDisplacement(yn, y)

	pin := pm - pdelta
	*u.Ref(-1) = 2*k*gamma*pin - up.At(-1)

	return ReedFlow{
		DeltaP:  pdelta,
		Pin:     pin,
		Opening: yn*rp.Height + rp.Height,
	}
}

// reedPressure returns the pressure difference p with
// |p| + d1*sqrt(|p|) = |d2| and sign opposite to d2. The root of the
// quadratic in sqrt(|p|) is taken in the form that avoids cancellation
// when d1 is positive.
func reedPressure(d1, d2 float64) float64 {
	ad2 := math.Abs(d2)
	disc := math.Sqrt(d1*d1 + 4*ad2)
	var x float64
	switch {
	case d1 < 0:
		x = (-d1 + disc) / 2
	case d1+disc > 0:
		x = 2 * ad2 / (d1 + disc)
	}
	return -x * x * Sgn(d2)
}

// checkReedSigns logs intermediate quantities that are expected to be
// positive. The checks are advisory only.
func (s *FieldModel) checkReedSigns(a2, b1, b3, c2, d1 float64) {
	checks := []struct {
		name  string
		value float64
	}{
		{"a2", a2}, {"b1", b1}, {"b3", b3}, {"c2", c2}, {"d1", d1},
	}
	for _, c := range checks {
		if c.value < 0 {
			s.log.WithField("term", c.name).WithField("value", c.value).Debug("reed coupling term below zero")
		}
	}
}
