package instruments

import (
	"fmt"
	"math"
	"sort"
)

// Patch is a playable instrument built from engine models.
type Patch interface {
	Name() string
	SampleRate() float64

	// Process advances the patch one sample and returns its output. A
	// non-nil error reports a recoverable numerical failure for this sample
	// (e.g. a bow solve that did not converge); the sample is still valid.
	Process() (float64, error)

	Trigger()
	Release()
	Reset()

	Params() map[string]float64
	SetParam(name string, value float64) error
}

// Shaper is implemented by patches with a distributed body whose current
// displacement can be displayed.
type Shaper interface {
	Shape() []float64
}

// param is a named tunable bound to a field of a patch.
type param struct {
	ptr      *float64
	min, max float64
	// onSet runs after a successful update.
	onSet func()
}

type paramTable map[string]*param

func (t paramTable) values() map[string]float64 {
	out := make(map[string]float64, len(t))
	for name, p := range t {
		out[name] = *p.ptr
	}
	return out
}

func (t paramTable) set(patch, name string, value float64) error {
	p, ok := t[name]
	if !ok {
		return fmt.Errorf("%w: %s has no %q", ErrUnknownParam, patch, name)
	}
	if math.IsNaN(value) || value < p.min || value > p.max {
		return fmt.Errorf("%w: %s.%s=%g not in [%g, %g]", ErrParamRange, patch, name, value, p.min, p.max)
	}
	*p.ptr = value
	if p.onSet != nil {
		p.onSet()
	}
	return nil
}

// ApplyParams sets every entry of params on p, stopping at the first error.
// Names are applied in sorted order so failures are reproducible.
func ApplyParams(p Patch, params map[string]float64) error {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := p.SetParam(name, params[name]); err != nil {
			return err
		}
	}
	return nil
}
