package metrics

import (
	"math"

	"github.com/san-kum/fdsynth/internal/sim"
)

// Stability is the fraction of samples that stayed finite and within the
// mute threshold. A value below 1 means the render blew up at least once.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

// NewStability creates the metric; a non-positive threshold uses
// sim.DefaultMuteThreshold.
func NewStability(threshold float64) *Stability {
	if threshold <= 0 {
		threshold = sim.DefaultMuteThreshold
	}
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x sim.Sample) {
	s.samples++
	if x.Muted || !x.IsValid() || math.Abs(x.Value) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
