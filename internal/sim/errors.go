package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates a render config that cannot run.
	ErrInvalidConfig = errors.New("sim: invalid render config")

	// ErrUnstable indicates the patch output diverged or left the mute
	// threshold.
	ErrUnstable = errors.New("sim: render unstable (output muted)")
)

// SimError wraps an error with the render position it happened at.
type SimError struct {
	Step    int
	Time    float64
	Value   float64
	Wrapped error
}

func (e *SimError) Error() string {
	return fmt.Sprintf("%v at step %d (t=%.4fs, value %g)", e.Wrapped, e.Step, e.Time, e.Value)
}

func (e *SimError) Unwrap() error {
	return e.Wrapped
}
