package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/fdsynth/internal/instruments"
	"github.com/san-kum/fdsynth/internal/viz"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string

	// Render settings
	sampleRate float64
	duration   float64
	gain       float64
	releaseAt  float64
	paramSets  []string
	configFile string
	preset     string
	stopOnMute bool
	savePlots  bool

	// Live view
	speed float64

	// Analysis
	maxFreq     float64
	plotMaxFreq float64
	outPath     string

	// Bench
	jobs    int
	workers int
)

// main registers the commands and runs the root command. Without a
// subcommand the interactive patch picker starts.
func main() {
	rootCmd := &cobra.Command{
		Use:   "fdsynth",
		Short: "finite-difference physical modelling synthesizer",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app := viz.NewApp(instruments.NewRegistry(), 44100, 1)
			_, err := tea.NewProgram(app, tea.WithAltScreen()).Run()
			return err
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".fdsynth", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	renderCmd := &cobra.Command{
		Use:   "render [patch]",
		Short: "render a patch to the run store",
		Args:  cobra.MaximumNArgs(1),
		RunE:  renderPatch,
	}
	addRenderFlags(renderCmd)
	renderCmd.Flags().BoolVar(&stopOnMute, "stop-on-unstable", false, "stop at the first muted sample")
	renderCmd.Flags().BoolVar(&savePlots, "png", false, "also write waveform and spectrum plots")

	playCmd := &cobra.Command{
		Use:   "play [patch]",
		Short: "render a patch in real time to the default audio device",
		Args:  cobra.MaximumNArgs(1),
		RunE:  playPatch,
	}
	addRenderFlags(playCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a run's output in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	pngCmd := &cobra.Command{
		Use:   "png [run_id]",
		Short: "write waveform and spectrum PNG plots of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  pngRun,
	}
	pngCmd.Flags().Float64Var(&plotMaxFreq, "max-freq", 5000, "highest frequency shown in the spectrum")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id | file.wav]",
		Short: "pitch, level and decay analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&maxFreq, "max-freq", 2000, "highest frequency shown in the spectrum")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run with its samples as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [patch]",
		Short: "list render presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	materialsCmd := &cobra.Command{
		Use:   "materials",
		Short: "list material presets",
		RunE:  listMaterials,
	}

	patchesCmd := &cobra.Command{
		Use:   "patches",
		Short: "list patches and their parameters",
		RunE:  listPatches,
	}

	liveCmd := &cobra.Command{
		Use:   "live [patch]",
		Short: "interactive terminal view of a running patch",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&sampleRate, "sample-rate", 44100, "sample rate in Hz")
	liveCmd.Flags().Float64Var(&speed, "speed", 1, "simulated seconds per second")
	liveCmd.Flags().StringArrayVar(&paramSets, "set", nil, "patch parameter name=value (repeatable)")

	tuneCmd := &cobra.Command{
		Use:   "tune [patch]",
		Short: "grid search patch parameters for a pitch or metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tunePatch,
	}
	addRenderFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&rangeSpecs, "range", nil, "parameter grid name=lo:hi:n (repeatable)")
	tuneCmd.Flags().Float64Var(&targetHz, "target-hz", 0, "minimise distance in cents to this pitch")
	tuneCmd.Flags().StringVar(&objective, "objective", "", "minimise this metric instead")
	tuneCmd.Flags().IntVar(&top, "top", 5, "number of results shown")
	tuneCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")

	sweepCmd := &cobra.Command{
		Use:   "sweep [patch]",
		Short: "render a patch across a range of one parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepPatch,
	}
	addRenderFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "render every step of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().BoolVar(&noSave, "no-save", false, "do not write runs to the data directory")
	batchCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [patch]",
		Short: "render randomly perturbed parameters and count unstable trials",
		Args:  cobra.MaximumNArgs(1),
		RunE:  monteCarlo,
	}
	addRenderFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&spread, "spread", 0.1, "relative parameter perturbation")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	monteCarloCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")

	benchCmd := &cobra.Command{
		Use:   "bench [patch]",
		Short: "measure render speed, serially and in parallel",
		Args:  cobra.ExactArgs(1),
		RunE:  benchPatch,
	}
	benchCmd.Flags().Float64Var(&duration, "time", 1, "seconds rendered per job")
	benchCmd.Flags().IntVar(&jobs, "jobs", 8, "number of renders")
	benchCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")

	rootCmd.AddCommand(renderCmd, playCmd, listCmd, plotCmd, pngCmd, analyzeCmd, exportJSONCmd,
		presetsCmd, materialsCmd, patchesCmd, liveCmd, tuneCmd, sweepCmd, batchCmd, monteCarloCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&sampleRate, "sample-rate", 44100, "sample rate in Hz")
	cmd.Flags().Float64Var(&duration, "time", 2, "duration in seconds")
	cmd.Flags().Float64Var(&gain, "gain", 1, "output gain")
	cmd.Flags().Float64Var(&releaseAt, "release", 0, "release time in seconds (0 holds the note)")
	cmd.Flags().StringArrayVar(&paramSets, "set", nil, "patch parameter name=value (repeatable)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}
