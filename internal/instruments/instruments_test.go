package instruments

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/fdsynth/internal/fds"
)

func render(p Patch, n int) ([]float64, int) {
	out := make([]float64, n)
	failures := 0
	for i := range out {
		y, err := p.Process()
		if err != nil {
			failures++
		}
		out[i] = y
	}
	return out, failures
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	want := []string{
		"bowed-oscillator", "bowed-string", "fingered-string", "oscillator",
		"plucked-string", "reed-tube", "struck-string",
	}
	got := r.List()
	if len(got) != len(want) {
		t.Fatalf("expected %d patches, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("patch %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	for _, name := range got {
		if r.Describe(name) == "" {
			t.Errorf("%s has no description", name)
		}
	}
}

func TestRegistryUnknown(t *testing.T) {
	_, err := NewRegistry().Get("theremin", 44100)
	if !errors.Is(err, ErrUnknownPatch) {
		t.Errorf("expected ErrUnknownPatch, got %v", err)
	}
}

func TestPatchesSilentUntilTriggered(t *testing.T) {
	r := NewRegistry()
	for _, name := range r.List() {
		t.Run(name, func(t *testing.T) {
			p, err := r.Get(name, 44100)
			if err != nil {
				t.Fatal(err)
			}
			out, _ := render(p, 1000)
			for i, y := range out {
				if y != 0 {
					t.Fatalf("sample %d: expected silence, got %g", i, y)
				}
			}
		})
	}
}

func TestPatchesRenderBounded(t *testing.T) {
	r := NewRegistry()
	for _, name := range r.List() {
		t.Run(name, func(t *testing.T) {
			p, err := r.Get(name, 44100)
			if err != nil {
				t.Fatal(err)
			}
			if p.Name() != name {
				t.Errorf("expected name %s, got %s", name, p.Name())
			}
			if p.SampleRate() != 44100 {
				t.Errorf("expected sample rate 44100, got %g", p.SampleRate())
			}

			p.Trigger()
			out, failures := render(p, 22050)

			var peak float64
			for i, y := range out {
				if math.IsNaN(y) || math.IsInf(y, 0) {
					t.Fatalf("sample %d is not finite", i)
				}
				peak = math.Max(peak, math.Abs(y))
			}
			if peak == 0 {
				t.Error("expected sound after trigger")
			}
			if peak > 1.5 {
				t.Errorf("expected peak below 1.5, got %g", peak)
			}
			if failures > len(out)/10 {
				t.Errorf("too many solver failures: %d", failures)
			}
		})
	}
}

func TestSetParam(t *testing.T) {
	p := NewPluckedString(44100)

	if err := p.SetParam("position", 0.5); err != nil {
		t.Fatalf("set position: %v", err)
	}
	if got := p.Params()["position"]; got != 0.5 {
		t.Errorf("expected position 0.5, got %g", got)
	}

	if err := p.SetParam("frobnication", 1); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
	if err := p.SetParam("position", 2); !errors.Is(err, ErrParamRange) {
		t.Errorf("expected ErrParamRange, got %v", err)
	}
	if err := p.SetParam("pitch", math.NaN()); !errors.Is(err, ErrParamRange) {
		t.Errorf("expected ErrParamRange for NaN, got %v", err)
	}
	// The stable pitch range depends on the grid.
	if err := p.SetParam("pitch", 1000); !errors.Is(err, ErrParamRange) {
		t.Errorf("expected pitch 1000 to be rejected, got %v", err)
	}
}

func TestApplyParams(t *testing.T) {
	p := NewBowedString(44100)
	err := ApplyParams(p, map[string]float64{
		"bow":         float64(BowTanh),
		"bow_force":   0.2,
		"bow_missing": 1,
	})
	if !errors.Is(err, ErrUnknownParam) {
		t.Fatalf("expected ErrUnknownParam, got %v", err)
	}
	// Names sort before bow_missing, so both were applied.
	if p.Kind() != BowTanh {
		t.Errorf("expected tanh bow, got %v", p.Kind())
	}
	if p.BowForce != 0.2 {
		t.Errorf("expected bow force 0.2, got %g", p.BowForce)
	}
}

func TestBowKinds(t *testing.T) {
	for kind := BowNewton; kind <= BowTanh; kind++ {
		t.Run(kind.String(), func(t *testing.T) {
			p := NewBowedString(44100)
			if err := p.SetParam("bow", float64(kind)); err != nil {
				t.Fatal(err)
			}
			p.Trigger()
			out, _ := render(p, 8820)
			var energy float64
			for _, y := range out {
				energy += y * y
			}
			if energy == 0 || math.IsNaN(energy) {
				t.Errorf("expected finite non-zero output, energy %g", energy)
			}
		})
	}
	if BowKind(9).String() != "BowKind(9)" {
		t.Errorf("unexpected name %q", BowKind(9).String())
	}
}

func TestPluckedStringPitch(t *testing.T) {
	p := NewPluckedString(44100)
	if err := p.SetParam("pitch", 220); err != nil {
		t.Fatal(err)
	}
	p.Trigger()
	out, _ := render(p, 44100)

	crossings := 0
	for i := 1; i < len(out); i++ {
		if out[i-1] < 0 && out[i] >= 0 {
			crossings++
		}
	}
	if math.Abs(float64(crossings)-220) > 8 {
		t.Errorf("expected about 220 crossings, got %d", crossings)
	}
}

func TestReleaseShortensDecay(t *testing.T) {
	tail := func(release bool) float64 {
		p := NewPluckedString(44100)
		p.Trigger()
		render(p, 4410)
		if release {
			p.Release()
		}
		out, _ := render(p, 22050)
		var peak float64
		for _, y := range out[len(out)-4410:] {
			peak = math.Max(peak, math.Abs(y))
		}
		return peak
	}
	if held, released := tail(false), tail(true); released >= held/2 {
		t.Errorf("expected release to damp: held %g released %g", held, released)
	}
}

func TestResetSilences(t *testing.T) {
	r := NewRegistry()
	for _, name := range r.List() {
		p, _ := r.Get(name, 44100)
		p.Trigger()
		render(p, 2000)
		p.Reset()
		out, _ := render(p, 100)
		for _, y := range out {
			if y != 0 {
				t.Errorf("%s: expected silence after reset, got %g", name, y)
				break
			}
		}
	}
}

func TestFingeredStringPressesDown(t *testing.T) {
	p := NewFingeredString(44100)
	p.Trigger()
	render(p, 4410)
	if p.FingerState() != fds.FingerDown {
		t.Errorf("expected finger down, got %v", p.FingerState())
	}
	p.Release()
	if p.FingerState() != fds.FingerReleased {
		t.Errorf("expected finger released, got %v", p.FingerState())
	}
}

func TestShapers(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"plucked-string", "struck-string", "bowed-string", "fingered-string", "reed-tube"} {
		p, _ := r.Get(name, 44100)
		s, ok := p.(Shaper)
		if !ok {
			t.Errorf("%s does not expose its shape", name)
			continue
		}
		if len(s.Shape()) == 0 {
			t.Errorf("%s has an empty shape", name)
		}
	}
}

func TestEnvelope(t *testing.T) {
	e := NewEnvelope(1000)
	e.Attack, e.Decay, e.Sustain, e.ReleaseTime = 0.01, 0.01, 0.5, 0.01

	if e.Next() != 0 || e.Active() {
		t.Fatal("expected idle envelope at zero")
	}

	e.Trigger()
	for i := 0; i < 11; i++ {
		e.Next()
	}
	if e.Level() != 1 || e.Stage() != StageDecay {
		t.Errorf("expected peak after attack, got %g in %v", e.Level(), e.Stage())
	}
	for i := 0; i < 11; i++ {
		e.Next()
	}
	if e.Stage() != StageSustain || math.Abs(e.Level()-0.5) > 1e-9 {
		t.Errorf("expected sustain at 0.5, got %g in %v", e.Level(), e.Stage())
	}

	e.Release()
	for i := 0; i < 11; i++ {
		e.Next()
	}
	if e.Stage() != StageIdle || e.Level() != 0 {
		t.Errorf("expected idle after release, got %g in %v", e.Level(), e.Stage())
	}
}

func TestEnvelopeZeroTimes(t *testing.T) {
	e := NewEnvelope(1000)
	e.Attack, e.Decay, e.ReleaseTime = 0, 0, 0
	e.Trigger()
	if e.Next() != 1 {
		t.Errorf("expected instant attack, got %g", e.Level())
	}
	e.Next()
	if e.Stage() != StageSustain {
		t.Errorf("expected sustain, got %v", e.Stage())
	}
	e.Release()
	if e.Next() != 0 {
		t.Errorf("expected instant release, got %g", e.Level())
	}
}

func TestReleaseParamSetsEnvelopeTime(t *testing.T) {
	b := NewBowedString(44100)
	if err := b.SetParam("release", 0.75); err != nil {
		t.Fatal(err)
	}
	if b.env.ReleaseTime != 0.75 {
		t.Errorf("expected release time 0.75, got %g", b.env.ReleaseTime)
	}
	if got := b.Params()["release"]; got != 0.75 {
		t.Errorf("expected release param 0.75, got %g", got)
	}

	r := NewReedTube(44100)
	if err := r.SetParam("release", 0.3); err != nil {
		t.Fatal(err)
	}
	if r.env.ReleaseTime != 0.3 {
		t.Errorf("expected release time 0.3, got %g", r.env.ReleaseTime)
	}
}
