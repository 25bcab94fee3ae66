package main

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/fdsynth/internal/automation"
	"github.com/san-kum/fdsynth/internal/instruments"
	"github.com/san-kum/fdsynth/internal/metrics"
	"github.com/san-kum/fdsynth/internal/optim"
	"github.com/san-kum/fdsynth/internal/sim"
	"github.com/san-kum/fdsynth/internal/storage"
	"github.com/spf13/cobra"
)

var (
	// Tune
	rangeSpecs []string
	targetHz   float64
	objective  string
	top        int

	// Sweep
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int

	// Batch
	noSave bool

	// Monte Carlo
	trials int
	spread float64
	seed   int64
)

// paramRange is a parsed name=lo:hi:n grid axis.
type paramRange struct {
	name   string
	values []float64
}

func parseRange(axis string) (paramRange, error) {
	name, raw, ok := strings.Cut(axis, "=")
	if !ok || name == "" {
		return paramRange{}, fmt.Errorf("invalid range %q: want name=lo:hi:n", axis)
	}
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return paramRange{}, fmt.Errorf("invalid range %q: want name=lo:hi:n", axis)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return paramRange{}, fmt.Errorf("invalid range %q: %w", axis, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return paramRange{}, fmt.Errorf("invalid range %q: %w", axis, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return paramRange{}, fmt.Errorf("invalid range %q: count must be a positive integer", axis)
	}
	return paramRange{name: name, values: optim.Span(lo, hi, n)}, nil
}

func newEnsemble(sampleRate float64) *sim.Ensemble {
	return sim.NewEnsemble(instruments.NewRegistry(), workers).WithMetrics(func() []sim.Metric {
		return metrics.Defaults(sampleRate)
	})
}

func tunePatch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(rangeSpecs) == 0 {
		return fmt.Errorf("at least one --range is required")
	}

	var names []string
	var ranges [][]float64
	for _, axis := range rangeSpecs {
		r, err := parseRange(axis)
		if err != nil {
			return err
		}
		names = append(names, r.name)
		ranges = append(ranges, r.values)
	}

	var obj optim.Objective
	switch {
	case targetHz > 0:
		obj = optim.PitchObjective(targetHz)
	case objective != "":
		obj = optim.MetricObjective(objective)
	default:
		return fmt.Errorf("set --target-hz or --objective")
	}

	ctx, cancel := signalContext()
	defer cancel()

	gs := optim.NewGridSearch(names, ranges)
	fmt.Printf("tuning %s over %d combinations\n\n", cfg.Patch, len(gs.Combinations()))
	points, err := gs.Search(ctx, newEnsemble(cfg.SampleRate), cfg.Job(), obj)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RANK\t%s\tSCORE\n", strings.ToUpper(strings.Join(names, "\t")))
	for i, p := range points {
		if i >= top {
			break
		}
		cols := make([]string, len(names))
		for j, n := range names {
			cols[j] = strconv.FormatFloat(p.Params[n], 'g', 6, 64)
		}
		fmt.Fprintf(w, "%d\t%s\t%.4g\n", i+1, strings.Join(cols, "\t"), p.Score)
	}
	return w.Flush()
}

func sweepPatch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if sweepParam == "" {
		return fmt.Errorf("--param is required")
	}

	ctx, cancel := signalContext()
	defer cancel()

	sweep := &automation.ParameterSweep{
		Base:      cfg,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
	}
	results, err := automation.RunSweep(ctx, sweep, newEnsemble(cfg.SampleRate))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tPEAK\tRMS\tPITCH (HZ)\tT60 (S)\tSTABLE\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		t60 := "-"
		if r.DecayRate > 0 {
			t60 = fmt.Sprintf("%.2f", math.Log(1000)/r.DecayRate)
		}
		fmt.Fprintf(w, "%.4g\t%.4f\t%.4f\t%.2f\t%s\t%v\n",
			r.ParamValue, r.Peak, r.RMS, r.Dominant, t60, !r.Unstable)
	}
	return w.Flush()
}

func runBatch(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	var st *storage.Store
	if !noSave {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	results, err := automation.RunScenario(ctx, sc, sim.NewEnsemble(instruments.NewRegistry(), workers), st)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tPATCH\tRUN ID\tPEAK\tSTABLE")
	for i, r := range results {
		id := r.RunID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.4f\t%v\n", i+1, r.Result.Patch, id, r.Result.Metrics["peak"], !r.Result.Unstable)
	}
	return w.Flush()
}

func monteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(cfg.Params) == 0 {
		return fmt.Errorf("no parameters to perturb: use --set or --preset")
	}

	ctx, cancel := signalContext()
	defer cancel()

	mc := &automation.MonteCarloConfig{Base: cfg, Perturbation: spread, NumTrials: trials, Seed: seed}
	results, err := automation.RunMonteCarlo(ctx, mc, newEnsemble(cfg.SampleRate))
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("%s: %d trials, %d stable, %d unstable\n", cfg.Patch, len(results), stable, unstable)
	for _, r := range results {
		if !r.Stable {
			fmt.Printf("  trial %d unstable: %v\n", r.TrialID, r.Params)
		}
	}
	return nil
}
