package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/fdsynth/internal/audio"
	"github.com/san-kum/fdsynth/internal/config"
	"github.com/san-kum/fdsynth/internal/instruments"
	"github.com/san-kum/fdsynth/internal/metrics"
	"github.com/san-kum/fdsynth/internal/sim"
	"github.com/san-kum/fdsynth/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// resolveConfig builds the render configuration. Precedence, lowest first:
// defaults, --preset, --config, explicit flags, --set parameters.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Patch = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Patch, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Patch))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if len(args) > 0 {
			loaded.Patch = args[0]
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("sample-rate") {
		cfg.SampleRate = sampleRate
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("gain") {
		cfg.Gain = gain
	}
	if cmd.Flags().Changed("release") {
		cfg.ReleaseAt = releaseAt
	}

	for _, kv := range paramSets {
		name, value, err := parseParam(kv)
		if err != nil {
			return nil, err
		}
		cfg.SetParam(name, value)
	}
	return cfg, nil
}

func parseParam(kv string) (string, float64, error) {
	name, raw, ok := strings.Cut(kv, "=")
	if !ok || name == "" {
		return "", 0, fmt.Errorf("invalid parameter %q: want name=value", kv)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid parameter %q: %w", kv, err)
	}
	return strings.TrimSpace(name), value, nil
}

func buildPatch(cfg *config.Config) (instruments.Patch, error) {
	patch, err := instruments.NewRegistry().Get(cfg.Patch, cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("%w (available: %v)", err, instruments.NewRegistry().List())
	}
	if err := instruments.ApplyParams(patch, cfg.Params); err != nil {
		return nil, err
	}
	return patch, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func renderPatch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	patch, err := buildPatch(cfg)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	r := sim.New(patch)
	for _, m := range metrics.Defaults(cfg.SampleRate) {
		r.AddMetric(m)
	}
	rc := cfg.RenderConfig()
	rc.StopOnUnstable = stopOnMute

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("rendering %s...\n", cfg.Patch)
	start := time.Now()
	result, err := r.Render(ctx, rc)
	if result == nil {
		return err
	}
	if err != nil {
		logrus.WithError(err).Warn("render ended early")
	}
	elapsed := time.Since(start)

	runID, saveErr := st.Save(result, patch.Params())
	if saveErr != nil {
		return saveErr
	}

	fmt.Printf("completed in %v (%.1fx real time)\n", elapsed, result.Duration()/elapsed.Seconds())
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d\n", len(result.Samples))
	if result.Unstable {
		fmt.Printf("unstable: %d samples muted\n", len(result.Errors))
	}
	printMetrics(result.Metrics)

	if savePlots {
		paths, err := st.SavePlots(runID, plotMaxFreq)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Printf("wrote %s\n", p)
		}
	}
	return err
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, m[name])
	}
}

func playPatch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	patch, err := buildPatch(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	player := audio.NewPlayer(cfg.SampleRate)
	fmt.Printf("playing %s for %.1fs (ctrl+c stops)\n", cfg.Patch, cfg.Duration)
	result, err := player.Play(ctx, sim.New(patch), cfg.RenderConfig())
	if err != nil && ctx.Err() == nil {
		return err
	}
	if result != nil {
		low, mid, high, peak := player.Meter().Levels()
		fmt.Printf("played %.2fs, peak %.3f, bands low %.2f mid %.2f high %.2f\n",
			result.Duration(), peak, low, mid, high)
	}
	return nil
}

func benchPatch(cmd *cobra.Command, args []string) error {
	patch := args[0]
	if jobs < 1 {
		return fmt.Errorf("jobs must be positive, got %d", jobs)
	}

	batch := make([]sim.Job, jobs)
	for i := range batch {
		batch[i] = sim.Job{
			Patch:  patch,
			Config: sim.Config{SampleRate: 44100, Duration: duration},
		}
	}

	fmt.Printf("benchmarking %s: %d x %.1fs\n\n", patch, jobs, duration)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKERS\tJOBS\tTIME\tSAMPLES/SEC\tREALTIME")

	reg := instruments.NewRegistry()
	for _, n := range []int{1, workers} {
		ens := sim.NewEnsemble(reg, n).WithMetrics(func() []sim.Metric {
			return metrics.Defaults(44100)
		})

		start := time.Now()
		results, err := ens.Run(context.Background(), batch)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		samples, rendered := 0, 0.0
		for _, r := range results {
			samples += len(r.Samples)
			rendered += r.Duration()
		}
		label := strconv.Itoa(n)
		if n <= 0 {
			label = "max"
		}
		fmt.Fprintf(w, "%s\t%d\t%v\t%.0f\t%.1fx\n",
			label, jobs, elapsed.Round(time.Millisecond), float64(samples)/elapsed.Seconds(), rendered/elapsed.Seconds())
	}
	return w.Flush()
}
