package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/fdsynth/internal/analysis"
	"github.com/san-kum/fdsynth/internal/config"
	"github.com/san-kum/fdsynth/internal/fds"
	"github.com/san-kum/fdsynth/internal/instruments"
	"github.com/san-kum/fdsynth/internal/sim"
	"github.com/san-kum/fdsynth/internal/storage"
	"github.com/san-kum/fdsynth/internal/viz"
	"github.com/spf13/cobra"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPATCH\tTIME\tDURATION\tRATE\tPEAK\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Unstable {
			status = "unstable"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.0f\t%.3f\t%s\n",
			run.ID,
			run.Patch,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.SampleRate,
			run.Metrics["peak"],
			status,
		)
	}

	return w.Flush()
}

// loadRun returns a stored run's metadata and samples.
func loadRun(runID string) (*storage.RunMetadata, []float64, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	values, _, err := st.LoadSamples(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(values) == 0 {
		return nil, nil, fmt.Errorf("no data in run %s", runID)
	}
	return meta, values, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, values, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("patch: %s\n", meta.Patch)
	fmt.Printf("samples: %d\n\n", len(values))

	graph := asciigraph.Plot(envelope(values, 160),
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("output envelope"),
	)
	fmt.Println(graph)
	fmt.Println()

	// First 10 ms at full resolution.
	head := values[:min(len(values), int(meta.SampleRate/100))]
	graph = asciigraph.Plot(head,
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption("first 10 ms"),
	)
	fmt.Println(graph)
	return nil
}

// envelope reduces values to n buckets, keeping each bucket's largest
// magnitude with its sign.
func envelope(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	out := make([]float64, n)
	for b := range out {
		start, end := b*len(values)/n, (b+1)*len(values)/n
		best := values[start]
		for _, v := range values[start:end] {
			if v*v > best*best {
				best = v
			}
		}
		out[b] = best
	}
	return out
}

func pngRun(cmd *cobra.Command, args []string) error {
	paths, err := storage.New(dataDir).SavePlots(args[0], plotMaxFreq)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Printf("wrote %s\n", p)
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	var (
		name   string
		values []float64
		rate   float64
	)
	if strings.EqualFold(filepath.Ext(args[0]), ".wav") {
		samples, sr, err := storage.ReadWAV(args[0])
		if err != nil {
			return err
		}
		name, values, rate = filepath.Base(args[0]), samples, float64(sr)
	} else {
		meta, samples, err := loadRun(args[0])
		if err != nil {
			return err
		}
		name, values, rate = meta.ID, samples, meta.SampleRate
	}

	fmt.Printf("analysis: %s\n\n", name)

	freqs, mags := analysis.Spectrum(values, rate)
	cut := len(freqs)
	for i, f := range freqs {
		if f > maxFreq {
			cut = i
			break
		}
	}
	if cut > 1 {
		graph := asciigraph.Plot(mags[:cut],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("magnitude spectrum, 0-%.0f hz", freqs[cut-1])),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	r := analysis.Summarize(values, rate)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "duration\t%.3f s\n", r.Duration)
	fmt.Fprintf(w, "peak\t%.4f\n", r.Peak)
	fmt.Fprintf(w, "rms\t%.4f\n", r.RMS)
	fmt.Fprintf(w, "dominant frequency\t%.2f hz\n", r.Dominant)
	fmt.Fprintf(w, "crossing frequency\t%.2f hz\n", r.Crossing)
	if r.Dominant > 0 {
		fmt.Fprintf(w, "period\t%.3f ms\n", 1000/r.Dominant)
	}
	if r.DecayValid {
		fmt.Fprintf(w, "decay rate\t%.3f 1/s\n", r.DecayRate)
		fmt.Fprintf(w, "t60\t%.3f s\n", r.T60)
	}
	return w.Flush()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, values, err := loadRun(args[0])
	if err != nil {
		return err
	}
	result := &sim.Result{
		Patch:          meta.Patch,
		SampleRate:     meta.SampleRate,
		Samples:        values,
		Metrics:        meta.Metrics,
		SolverFailures: meta.SolverFailures,
		Unstable:       meta.Unstable,
	}
	if outPath == "" {
		return storage.WriteJSON(os.Stdout, result, meta.Params)
	}
	if err := storage.ExportJSON(outPath, result, meta.Params); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outPath)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	patches := make([]string, 0, len(config.Presets))
	if len(args) > 0 {
		patches = append(patches, args[0])
	} else {
		for p := range config.Presets {
			patches = append(patches, p)
		}
		sort.Strings(patches)
	}

	for _, p := range patches {
		names := config.ListPresets(p)
		if names == nil {
			return fmt.Errorf("no presets for %s", p)
		}
		fmt.Printf("%s:\n", p)
		for _, name := range names {
			cfg := config.GetPreset(p, name)
			fmt.Printf("  %-12s %.1fs %v\n", name, cfg.Duration, cfg.Params)
		}
	}
	return nil
}

func listMaterials(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tYOUNG'S MODULUS (Pa)\tDENSITY (kg/m^3)")
	for _, name := range fds.ListMaterials() {
		m, _ := fds.GetMaterial(name)
		fmt.Fprintf(w, "%s\t%.3g\t%.4g\n", m.Name, m.YoungsModulus, m.Density)
	}
	return w.Flush()
}

func listPatches(cmd *cobra.Command, args []string) error {
	reg := instruments.NewRegistry()
	for _, name := range reg.List() {
		p, err := reg.Get(name, 44100)
		if err != nil {
			return err
		}
		fmt.Printf("%s - %s\n", name, reg.Describe(name))

		params := p.Params()
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %-16s %g\n", k, params[k])
		}
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	var m tea.Model
	if len(args) == 0 {
		m = viz.NewApp(instruments.NewRegistry(), sampleRate, speed)
	} else {
		cfg := config.DefaultConfig()
		cfg.Patch = args[0]
		cfg.SampleRate = sampleRate
		for _, kv := range paramSets {
			name, value, err := parseParam(kv)
			if err != nil {
				return err
			}
			cfg.SetParam(name, value)
		}
		patch, err := buildPatch(cfg)
		if err != nil {
			return err
		}
		m = viz.NewModel(patch, speed)
	}

	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
