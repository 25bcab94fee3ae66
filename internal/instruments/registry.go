package instruments

import (
	"fmt"
	"sort"
)

// Factory builds a patch at the given sample rate.
type Factory func(sampleRate float64) Patch

type entry struct {
	factory     Factory
	description string
}

// Registry maps patch names to factories.
type Registry struct {
	patches map[string]entry
}

// NewRegistry returns a registry holding every built-in patch.
func NewRegistry() *Registry {
	r := &Registry{patches: make(map[string]entry)}

	r.Register("oscillator", "damped mass-spring oscillator",
		func(sr float64) Patch { return NewOscillator(sr) })
	r.Register("bowed-oscillator", "mass-spring oscillator driven by an exponential bow",
		func(sr float64) Patch { return NewBowedOscillator(sr) })
	r.Register("plucked-string", "nylon string released from a triangular shape",
		func(sr float64) Patch { return NewPluckedString(sr) })
	r.Register("struck-string", "stiff steel string hit by a felt mallet",
		func(sr float64) Patch { return NewStruckString(sr) })
	r.Register("bowed-string", "steel string driven by a selectable bow model",
		func(sr float64) Patch { return NewBowedString(sr) })
	r.Register("fingered-string", "bowed string stopped by a finger",
		func(sr float64) Patch { return NewFingeredString(sr) })
	r.Register("reed-tube", "bore driven by a single reed",
		func(sr float64) Patch { return NewReedTube(sr) })

	return r
}

// Register adds or replaces a patch.
func (r *Registry) Register(name, description string, f Factory) {
	r.patches[name] = entry{factory: f, description: description}
}

// Get builds the named patch.
func (r *Registry) Get(name string, sampleRate float64) (Patch, error) {
	e, ok := r.patches[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPatch, name)
	}
	return e.factory(sampleRate), nil
}

// Describe returns the one-line description of the named patch.
func (r *Registry) Describe(name string) string {
	return r.patches[name].description
}

// List returns the registered patch names in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.patches))
	for name := range r.patches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
