package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/fdsynth/internal/analysis"
	"github.com/san-kum/fdsynth/internal/sim"
	"gonum.org/v1/gonum/floats"
)

var ErrNoCandidates = errors.New("optim: no parameter combinations")

// Objective scores a render; lower is better.
type Objective func(*sim.Result) float64

// MetricObjective scores a render by one of its metrics.
func MetricObjective(name string) Objective {
	return func(r *sim.Result) float64 {
		v, ok := r.Metrics[name]
		if !ok {
			return math.Inf(1)
		}
		return v
	}
}

// PitchObjective scores a render by the distance in cents between its
// dominant frequency and target.
func PitchObjective(target float64) Objective {
	return func(r *sim.Result) float64 {
		f, err := analysis.DominantFrequency(r.Samples, r.SampleRate)
		if err != nil || f <= 0 {
			return math.Inf(1)
		}
		return math.Abs(1200 * math.Log2(f/target))
	}
}

// Span returns n evenly spaced values from lo to hi inclusive.
func Span(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Point is one evaluated parameter combination.
type Point struct {
	Params map[string]float64
	Score  float64
	Result *sim.Result
}

// GridSearch renders every combination of parameter values and ranks them
// by an objective.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Combinations returns every parameter assignment of the grid.
func (g *GridSearch) Combinations() []map[string]float64 {
	if len(g.paramNames) == 0 || len(g.paramNames) != len(g.ranges) {
		return nil
	}
	var out []map[string]float64
	g.expand(0, map[string]float64{}, &out)
	return out
}

func (g *GridSearch) expand(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[g.paramNames[depth]] = val
		g.expand(depth+1, next, out)
	}
}

// Search renders base once per combination, with the combination applied on
// top of base.Params, and returns the points sorted best first. Unstable
// renders score +Inf.
func (g *GridSearch) Search(ctx context.Context, ens *sim.Ensemble, base sim.Job, objective Objective) ([]Point, error) {
	combos := g.Combinations()
	if len(combos) == 0 {
		return nil, ErrNoCandidates
	}

	jobs := make([]sim.Job, len(combos))
	for i, combo := range combos {
		params := make(map[string]float64, len(base.Params)+len(combo))
		for k, v := range base.Params {
			params[k] = v
		}
		for k, v := range combo {
			params[k] = v
		}
		jobs[i] = sim.Job{Patch: base.Patch, Params: params, Config: base.Config}
	}

	results, err := ens.Run(ctx, jobs)
	if err != nil {
		return nil, fmt.Errorf("optim: %w", err)
	}

	points := make([]Point, len(results))
	for i, r := range results {
		score := objective(r)
		if r.Unstable || math.IsNaN(score) {
			score = math.Inf(1)
		}
		points[i] = Point{Params: combos[i], Score: score, Result: r}
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Score < points[j].Score })
	return points, nil
}
