package storage

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/san-kum/fdsynth/internal/analysis"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 4 * vg.Inch

	// maxPlotPoints bounds the waveform polyline; longer renders are
	// decimated by keeping the extreme of each bucket.
	maxPlotPoints = 4000
)

func newPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

func savePlotPNG(p *plot.Plot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("storage: create plot directory: %w", err)
	}
	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("storage: write plot %s: %w", path, err)
	}
	return nil
}

// SaveWaveformPlot renders samples against time to a PNG file.
func SaveWaveformPlot(path string, samples []float64, sampleRate float64, title string) error {
	if len(samples) == 0 || sampleRate <= 0 {
		return ErrEmptyRun
	}
	p := newPlot(title, "time (s)", "output")

	stride := (len(samples) + maxPlotPoints - 1) / maxPlotPoints
	pts := make(plotter.XYs, 0, len(samples)/stride+1)
	for start := 0; start < len(samples); start += stride {
		end := min(start+stride, len(samples))
		best := start
		for i := start + 1; i < end; i++ {
			if math.Abs(samples[i]) > math.Abs(samples[best]) {
				best = i
			}
		}
		pts = append(pts, plotter.XY{X: float64(best) / sampleRate, Y: samples[best]})
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1)
	p.Add(line)
	return savePlotPNG(p, path)
}

// SaveSpectrumPlot renders the magnitude spectrum in dB up to maxFreq Hz.
func SaveSpectrumPlot(path string, samples []float64, sampleRate, maxFreq float64, title string) error {
	freqs, mags := analysis.Spectrum(samples, sampleRate)
	if len(freqs) == 0 {
		return ErrEmptyRun
	}
	p := newPlot(title, "frequency (Hz)", "magnitude (dB)")

	peak := 0.0
	for _, m := range mags {
		peak = math.Max(peak, m)
	}
	if peak == 0 {
		peak = 1
	}

	pts := make(plotter.XYs, 0, len(freqs))
	for i, f := range freqs {
		if maxFreq > 0 && f > maxFreq {
			break
		}
		db := 20 * math.Log10(mags[i]/peak+1e-12)
		pts = append(pts, plotter.XY{X: f, Y: math.Max(db, -120)})
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1)
	p.Add(line)
	return savePlotPNG(p, path)
}

// SavePlots writes waveform.png and spectrum.png into a stored run's
// directory and returns their paths.
func (s *Store) SavePlots(runID string, maxFreq float64) ([]string, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	values, _, err := s.LoadSamples(runID)
	if err != nil {
		return nil, err
	}

	wave := filepath.Join(s.Dir(runID), "waveform.png")
	if err := SaveWaveformPlot(wave, values, meta.SampleRate, meta.Patch); err != nil {
		return nil, err
	}
	spectrum := filepath.Join(s.Dir(runID), "spectrum.png")
	if err := SaveSpectrumPlot(spectrum, values, meta.SampleRate, maxFreq, meta.Patch+" spectrum"); err != nil {
		return nil, err
	}
	s.log.WithField("run", runID).Debug("plots saved")
	return []string{wave, spectrum}, nil
}
