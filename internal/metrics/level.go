package metrics

import (
	"math"

	"github.com/san-kum/fdsynth/internal/sim"
)

// Peak is the largest absolute output value.
type Peak struct {
	peak float64
}

func NewPeak() *Peak { return &Peak{} }

func (p *Peak) Name() string { return "peak" }

func (p *Peak) Observe(x sim.Sample) {
	if v := math.Abs(x.Value); v > p.peak {
		p.peak = v
	}
}

func (p *Peak) Value() float64 { return p.peak }
func (p *Peak) Reset()         { p.peak = 0 }

// RMS is the root mean square of the output.
type RMS struct {
	sum     float64
	samples int
}

func NewRMS() *RMS { return &RMS{} }

func (r *RMS) Name() string { return "rms" }

func (r *RMS) Observe(x sim.Sample) {
	r.sum += x.Value * x.Value
	r.samples++
}

func (r *RMS) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return math.Sqrt(r.sum / float64(r.samples))
}

func (r *RMS) Reset() {
	r.sum = 0
	r.samples = 0
}

// Energy is the signal energy, the integral of the squared output over time.
type Energy struct {
	sampleRate float64
	sum        float64
}

func NewEnergy(sampleRate float64) *Energy {
	return &Energy{sampleRate: sampleRate}
}

func (e *Energy) Name() string { return "energy" }

func (e *Energy) Observe(x sim.Sample) {
	e.sum += x.Value * x.Value
}

func (e *Energy) Value() float64 {
	if e.sampleRate <= 0 {
		return 0
	}
	return e.sum / e.sampleRate
}

func (e *Energy) Reset() { e.sum = 0 }
