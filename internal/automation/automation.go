package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/san-kum/fdsynth/internal/analysis"
	"github.com/san-kum/fdsynth/internal/config"
	"github.com/san-kum/fdsynth/internal/metrics"
	"github.com/san-kum/fdsynth/internal/optim"
	"github.com/san-kum/fdsynth/internal/sim"
	"github.com/san-kum/fdsynth/internal/storage"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var ErrUnknownPreset = errors.New("automation: unknown preset")

// Scenario is a scripted batch of renders.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one render of a scenario. Unset fields fall back to the
// preset named by Preset of the step's patch, then to config defaults.
type ScenarioStep struct {
	Preset        string             `yaml:"preset"`
	Patch         string             `yaml:"patch"`
	SampleRate    float64            `yaml:"sample_rate"`
	Duration      float64            `yaml:"duration"`
	Gain          float64            `yaml:"gain"`
	ReleaseAt     float64            `yaml:"release_at"`
	MuteThreshold float64            `yaml:"mute_threshold"`
	Params        map[string]float64 `yaml:"params"`
	SaveAs        string             `yaml:"save_as"`
}

// StepResult pairs a step with its render and, when saved, its run ID.
type StepResult struct {
	Step   ScenarioStep
	Config *config.Config
	Result *sim.Result
	RunID  string
}

// LoadScenario loads a scenario from a YAML file. Relative save_as paths
// are resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("automation: parse %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range scenario.Steps {
		if p := scenario.Steps[i].SaveAs; p != "" && !filepath.IsAbs(p) {
			scenario.Steps[i].SaveAs = filepath.Join(dir, p)
		}
	}

	return &scenario, nil
}

// Config resolves the step into a full render configuration.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Patch != "" {
		cfg.Patch = s.Patch
	}
	if s.Preset != "" {
		p := config.GetPreset(cfg.Patch, s.Preset)
		if p == nil {
			return nil, fmt.Errorf("%w: %s/%s", ErrUnknownPreset, cfg.Patch, s.Preset)
		}
		cfg = p
	}
	if s.SampleRate > 0 {
		cfg.SampleRate = s.SampleRate
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Gain > 0 {
		cfg.Gain = s.Gain
	}
	if s.ReleaseAt > 0 {
		cfg.ReleaseAt = s.ReleaseAt
	}
	if s.MuteThreshold > 0 {
		cfg.MuteThreshold = s.MuteThreshold
	}
	for k, v := range s.Params {
		cfg.SetParam(k, v)
	}
	return cfg, nil
}

func scenarioMetrics() []sim.Metric {
	return []sim.Metric{
		metrics.NewPeak(),
		metrics.NewRMS(),
		metrics.NewStability(sim.DefaultMuteThreshold),
		metrics.NewSolverFailures(),
	}
}

// RunScenario renders every step in parallel and replaces the ensemble's
// metric factory with peak, rms, stability and solver failures. When store is non-nil each
// render is saved as a run; steps with save_as also get a WAV at that path.
func RunScenario(ctx context.Context, scenario *Scenario, ens *sim.Ensemble, store *storage.Store) ([]StepResult, error) {
	log := logrus.WithFields(logrus.Fields{"component": "automation", "scenario": scenario.Name})

	out := make([]StepResult, len(scenario.Steps))
	jobs := make([]sim.Job, len(scenario.Steps))
	for i, step := range scenario.Steps {
		cfg, err := step.Config()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		out[i] = StepResult{Step: step, Config: cfg}
		jobs[i] = cfg.Job()
	}

	log.WithField("steps", len(jobs)).Info("running scenario")
	results, err := ens.WithMetrics(scenarioMetrics).Run(ctx, jobs)
	if err != nil {
		return nil, fmt.Errorf("automation: %w", err)
	}

	for i, r := range results {
		out[i].Result = r
		if store != nil {
			id, err := store.Save(r, out[i].Config.Params)
			if err != nil {
				return out, fmt.Errorf("step %d save: %w", i+1, err)
			}
			out[i].RunID = id
		}
		if p := out[i].Step.SaveAs; p != "" {
			if err := storage.WriteWAV(p, r.Samples, int(r.SampleRate)); err != nil {
				return out, fmt.Errorf("step %d save_as: %w", i+1, err)
			}
		}
		log.WithFields(logrus.Fields{"step": i + 1, "patch": r.Patch, "unstable": r.Unstable}).Debug("step done")
	}

	return out, nil
}

// ParameterSweep renders one patch across a range of one parameter.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult summarises one render of a sweep.
type SweepResult struct {
	ParamValue float64
	Peak       float64
	RMS        float64
	Dominant   float64
	DecayRate  float64
	Unstable   bool
}

// RunSweep renders the sweep's parameter values in parallel.
func RunSweep(ctx context.Context, sweep *ParameterSweep, ens *sim.Ensemble) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("automation: sweep needs at least one step")
	}

	values := optim.Span(sweep.ParamMin, sweep.ParamMax, sweep.NumSteps)
	jobs := make([]sim.Job, len(values))
	for i, v := range values {
		cfg := sweep.Base.Clone()
		cfg.SetParam(sweep.ParamName, v)
		jobs[i] = cfg.Job()
	}

	results, err := ens.Run(ctx, jobs)
	if err != nil {
		return nil, fmt.Errorf("automation: %w", err)
	}

	out := make([]SweepResult, len(results))
	for i, r := range results {
		rep := analysis.Summarize(r.Samples, r.SampleRate)
		out[i] = SweepResult{
			ParamValue: values[i],
			Peak:       rep.Peak,
			RMS:        rep.RMS,
			Dominant:   rep.Dominant,
			DecayRate:  rep.DecayRate,
			Unstable:   r.Unstable,
		}
	}
	return out, nil
}

// MonteCarloConfig perturbs the parameters of a base configuration at
// random to find where a patch stays stable.
type MonteCarloConfig struct {
	Base *config.Config
	// Perturbation is the relative spread applied to each parameter.
	Perturbation float64
	NumTrials    int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID int
	Params  map[string]float64
	Peak    float64
	Stable  bool
}

// RunMonteCarlo renders NumTrials perturbed copies of the base
// configuration. Trials whose parameters fall outside a patch's allowed
// range fail the whole run.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, ens *sim.Ensemble) ([]MonteCarloResult, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	jobs := make([]sim.Job, cfg.NumTrials)
	params := make([]map[string]float64, cfg.NumTrials)
	for trial := range jobs {
		c := cfg.Base.Clone()
		for k, v := range c.Params {
			c.Params[k] = v * (1 + (rng.Float64()-0.5)*2*cfg.Perturbation)
		}
		params[trial] = c.Params
		jobs[trial] = c.Job()
	}

	results, err := ens.Run(ctx, jobs)
	if err != nil {
		return nil, fmt.Errorf("automation: %w", err)
	}

	out := make([]MonteCarloResult, len(results))
	for i, r := range results {
		peak := analysis.Peak(r.Samples)
		out[i] = MonteCarloResult{
			TrialID: i,
			Params:  params[i],
			Peak:    peak,
			Stable:  !r.Unstable && !math.IsNaN(peak),
		}
	}
	return out, nil
}

// MonteCarloStats counts stable and unstable trials.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
