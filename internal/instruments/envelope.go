package instruments

// Stage is the current segment of an Envelope.
type Stage int

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

func (s Stage) String() string {
	switch s {
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	}
	return "idle"
}

// Envelope is a linear ADSR envelope advanced once per sample. Times are in
// seconds, Sustain is a level in [0, 1].
type Envelope struct {
	Attack      float64
	Decay       float64
	Sustain     float64
	ReleaseTime float64

	SampleRate float64

	stage       Stage
	level       float64
	releaseStep float64
}

// NewEnvelope returns an idle envelope with a short attack.
func NewEnvelope(sampleRate float64) *Envelope {
	return &Envelope{
		Attack:      0.05,
		Decay:       0.1,
		Sustain:     0.8,
		ReleaseTime: 0.2,
		SampleRate:  sampleRate,
	}
}

// Trigger restarts the attack from the current level.
func (e *Envelope) Trigger() { e.stage = StageAttack }

// Release starts the release segment from the current level.
func (e *Envelope) Release() {
	if e.stage == StageIdle {
		return
	}
	e.stage = StageRelease
	e.releaseStep = e.step(e.ReleaseTime, e.level)
}

// Reset puts the envelope back to idle at zero.
func (e *Envelope) Reset() {
	e.stage = StageIdle
	e.level = 0
}

func (e *Envelope) Stage() Stage   { return e.stage }
func (e *Envelope) Level() float64 { return e.level }
func (e *Envelope) Active() bool   { return e.stage != StageIdle }

// step is the per-sample change needed to cover span in seconds; a
// non-positive time covers it at once.
func (e *Envelope) step(seconds, span float64) float64 {
	n := seconds * e.SampleRate
	if n < 1 {
		return span
	}
	return span / n
}

// Next advances one sample and returns the new level.
func (e *Envelope) Next() float64 {
	switch e.stage {
	case StageAttack:
		e.level += e.step(e.Attack, 1)
		if e.level >= 1 {
			e.level = 1
			e.stage = StageDecay
		}
	case StageDecay:
		e.level -= e.step(e.Decay, 1-e.Sustain)
		if e.level <= e.Sustain {
			e.level = e.Sustain
			e.stage = StageSustain
		}
	case StageRelease:
		e.level -= e.releaseStep
		if e.level <= 0 {
			e.level = 0
			e.stage = StageIdle
		}
	}
	return e.level
}
