package metrics

import "github.com/san-kum/fdsynth/internal/sim"

// SolverFailures counts samples for which the patch reported a numerical
// failure, typically a bow solve that hit its iteration limit.
type SolverFailures struct {
	count int
}

func NewSolverFailures() *SolverFailures { return &SolverFailures{} }

func (s *SolverFailures) Name() string { return "solver_failures" }

func (s *SolverFailures) Observe(x sim.Sample) {
	if x.Err != nil {
		s.count++
	}
}

func (s *SolverFailures) Value() float64 { return float64(s.count) }
func (s *SolverFailures) Reset()         { s.count = 0 }
