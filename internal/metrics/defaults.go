package metrics

import "github.com/san-kum/fdsynth/internal/sim"

// Defaults returns the metrics attached to every render.
func Defaults(sampleRate float64) []sim.Metric {
	return []sim.Metric{
		NewPeak(),
		NewRMS(),
		NewEnergy(sampleRate),
		NewStability(sim.DefaultMuteThreshold),
		NewSolverFailures(),
	}
}
