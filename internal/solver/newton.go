// Package solver provides the scalar root finder used by implicit force
// terms that depend on the state being computed.
package solver

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNotConverged indicates the iteration budget ran out before the step
	// fell below tolerance.
	ErrNotConverged = errors.New("solver: newton-raphson did not converge")

	// ErrZeroDerivative indicates the residual derivative vanished.
	ErrZeroDerivative = errors.New("solver: derivative too close to zero")

	// ErrNonFinite indicates the residual or the iterate became NaN or Inf.
	ErrNonFinite = errors.New("solver: non-finite residual or iterate")
)

// Error wraps a solver failure with the state of the iteration.
type Error struct {
	Iterations int
	Last       float64
	Step       float64
	Wrapped    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v after %d iterations (x=%g, step=%g)", e.Wrapped, e.Iterations, e.Last, e.Step)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Func returns the residual f(x) and its derivative f'(x).
type Func func(x float64) (fx, dfx float64)

// Options bounds a solve.
type Options struct {
	MaxIterations int
	Tolerance     float64
	MinDerivative float64
}

// DefaultOptions returns 50 iterations and a 1e-4 step tolerance.
func DefaultOptions() Options {
	return Options{
		MaxIterations: 50,
		Tolerance:     1e-4,
		MinDerivative: 1e-12,
	}
}

// Result is the outcome of a solve. Root holds the last iterate even when
// an error is returned.
type Result struct {
	Root       float64
	Iterations int
	Step       float64
}

// Newton iterates x <- x - f(x)/f'(x) from x0 until |step| < opts.Tolerance.
// It never allocates on success.
func Newton(fn Func, x0 float64, opts Options) (Result, error) {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultOptions().MaxIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultOptions().Tolerance
	}

	x := x0
	step := math.Inf(1)
	for i := 0; i < opts.MaxIterations; i++ {
		fx, dfx := fn(x)
		if math.IsNaN(fx) || math.IsInf(fx, 0) || math.IsNaN(dfx) || math.IsInf(dfx, 0) {
			return Result{Root: x, Iterations: i, Step: step}, &Error{Iterations: i, Last: x, Step: step, Wrapped: ErrNonFinite}
		}
		if math.Abs(dfx) < opts.MinDerivative {
			return Result{Root: x, Iterations: i, Step: step}, &Error{Iterations: i, Last: x, Step: step, Wrapped: ErrZeroDerivative}
		}

		step = fx / dfx
		x -= step
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return Result{Root: x, Iterations: i + 1, Step: step}, &Error{Iterations: i + 1, Last: x, Step: step, Wrapped: ErrNonFinite}
		}
		if math.Abs(step) < opts.Tolerance {
			return Result{Root: x, Iterations: i + 1, Step: step}, nil
		}
	}

	return Result{Root: x, Iterations: opts.MaxIterations, Step: step},
		&Error{Iterations: opts.MaxIterations, Last: x, Step: step, Wrapped: ErrNotConverged}
}
