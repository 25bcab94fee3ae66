package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/fdsynth/internal/instruments"
	"github.com/sirupsen/logrus"
)

// ctxCheckInterval is how many samples run between context checks.
const ctxCheckInterval = 256

// Renderer drives a patch sample by sample, the way an audio callback
// would, and feeds every sample to its metrics and observers.
type Renderer struct {
	patch     instruments.Patch
	metrics   []Metric
	observers []Observer
	blocks    *BlockPool
	log       *logrus.Entry
}

func New(patch instruments.Patch) *Renderer {
	return &Renderer{
		patch:     patch,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       logrus.WithField("patch", patch.Name()),
	}
}

func (r *Renderer) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Renderer) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// SetLogger replaces the render logger.
func (r *Renderer) SetLogger(l *logrus.Entry) {
	if l != nil {
		r.log = l.WithField("patch", r.patch.Name())
	}
}

// Patch returns the patch being rendered.
func (r *Renderer) Patch() instruments.Patch { return r.patch }

// Render triggers the patch and renders cfg.Duration seconds into memory.
// On cancellation the partial result is returned with the context error.
func (r *Renderer) Render(ctx context.Context, cfg Config) (*Result, error) {
	if err := r.validateConfig(cfg); err != nil {
		return nil, err
	}

	result := r.newResult(cfg)
	result.Samples = make([]float64, 0, cfg.Steps())

	err := r.run(ctx, cfg, result, func(s Sample) error {
		result.Samples = append(result.Samples, s.Value)
		return nil
	})
	r.collect(result)
	return result, err
}

// Stream renders like Render but hands the output to fn in blocks of
// blockSize samples; the last block may be shorter. fn must not keep the
// block after it returns. An error from fn stops the render.
func (r *Renderer) Stream(ctx context.Context, cfg Config, blockSize int, fn func(block []float64) error) (*Result, error) {
	if err := r.validateConfig(cfg); err != nil {
		return nil, err
	}
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: block size must be positive, got %d", ErrInvalidConfig, blockSize)
	}

	if r.blocks == nil || r.blocks.Size() != blockSize {
		r.blocks = NewBlockPool(blockSize)
	}
	block := r.blocks.Get()
	n := 0
	result := r.newResult(cfg)

	err := r.run(ctx, cfg, result, func(s Sample) error {
		block[n] = s.Value
		n++
		if n < blockSize {
			return nil
		}
		n = 0
		return fn(block)
	})
	if err == nil && n > 0 {
		err = fn(block[:n])
	}
	r.blocks.Put(block)
	r.collect(result)
	return result, err
}

func (r *Renderer) newResult(cfg Config) *Result {
	for _, m := range r.metrics {
		m.Reset()
	}
	return &Result{
		Patch:      r.patch.Name(),
		SampleRate: cfg.SampleRate,
		Metrics:    make(map[string]float64),
		Errors:     make([]error, 0),
	}
}

func (r *Renderer) collect(result *Result) {
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (r *Renderer) run(ctx context.Context, cfg Config, result *Result, emit func(Sample) error) error {
	steps := cfg.Steps()
	gain := cfg.gain()
	threshold := cfg.muteThreshold()
	releaseStep := -1
	if cfg.ReleaseAt > 0 {
		releaseStep = int(math.Round(cfg.ReleaseAt * cfg.SampleRate))
	}
	dt := 1 / cfg.SampleRate

	r.log.WithField("samples", steps).Debug("render started")
	r.patch.Trigger()

	for i := 0; i < steps; i++ {
		if i%ctxCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		if i == releaseStep {
			r.patch.Release()
		}

		y, stepErr := r.patch.Process()
		s := Sample{Index: i, Time: float64(i) * dt, Value: gain * y, Err: stepErr}

		if stepErr != nil {
			result.SolverFailures++
		}

		var unstable error
		if !s.IsValid() || math.Abs(s.Value) > threshold {
			unstable = &SimError{Step: i, Time: s.Time, Value: s.Value, Wrapped: ErrUnstable}
			if !result.Unstable {
				r.log.WithError(unstable).Warn("output muted")
			}
			result.Unstable = true
			result.Errors = append(result.Errors, unstable)
			r.patch.Reset()
			s.Value = 0
			s.Muted = true
		}

		r.observe(s)
		result.StepsTaken++
		if err := emit(s); err != nil {
			return err
		}
		if unstable != nil && cfg.StopOnUnstable {
			return unstable
		}
	}

	r.log.WithFields(logrus.Fields{
		"samples":         result.StepsTaken,
		"solver_failures": result.SolverFailures,
		"unstable":        result.Unstable,
	}).Debug("render finished")
	return nil
}

func (r *Renderer) observe(s Sample) {
	for _, m := range r.metrics {
		m.Observe(s)
	}
	for _, obs := range r.observers {
		obs.OnSample(s)
	}
}

func (r *Renderer) validateConfig(cfg Config) error {
	if cfg.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %g", ErrInvalidConfig, cfg.SampleRate)
	}
	if cfg.SampleRate != r.patch.SampleRate() {
		return fmt.Errorf("%w: sample rate %g does not match patch rate %g", ErrInvalidConfig, cfg.SampleRate, r.patch.SampleRate())
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.Gain < 0 {
		return fmt.Errorf("%w: gain must not be negative, got %g", ErrInvalidConfig, cfg.Gain)
	}
	return nil
}
