package sim

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/san-kum/fdsynth/internal/instruments"
)

// Job is one render of an Ensemble.
type Job struct {
	Patch  string
	Params map[string]float64
	Config Config
}

// Ensemble renders independent jobs in parallel, one patch per goroutine.
type Ensemble struct {
	registry *instruments.Registry
	workers  int
	metrics  func() []Metric
}

// NewEnsemble creates an ensemble running at most workers renders at once;
// a non-positive count uses GOMAXPROCS.
func NewEnsemble(registry *instruments.Registry, workers int) *Ensemble {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Ensemble{registry: registry, workers: workers}
}

// WithMetrics sets a factory for the metrics of every job. Each job gets
// its own instances.
func (e *Ensemble) WithMetrics(factory func() []Metric) *Ensemble {
	e.metrics = factory
	return e
}

// Run renders every job and returns the results in job order. The first
// error of any job is returned after all jobs finished.
func (e *Ensemble) Run(ctx context.Context, jobs []Job) ([]*Result, error) {
	results := make([]*Result, len(jobs))
	errs := make([]error, len(jobs))
	sem := make(chan struct{}, e.workers)

	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx], errs[idx] = e.runJob(ctx, jobs[idx])
		}(i)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return results, fmt.Errorf("job %d (%s): %w", i, jobs[i].Patch, err)
		}
	}

	return results, nil
}

func (e *Ensemble) runJob(ctx context.Context, job Job) (*Result, error) {
	patch, err := e.registry.Get(job.Patch, job.Config.SampleRate)
	if err != nil {
		return nil, err
	}
	if err := instruments.ApplyParams(patch, job.Params); err != nil {
		return nil, err
	}

	r := New(patch)
	if e.metrics != nil {
		for _, m := range e.metrics() {
			r.AddMetric(m)
		}
	}
	return r.Render(ctx, job.Config)
}
