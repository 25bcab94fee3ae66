package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/fdsynth/internal/sim"
)

type ExportData struct {
	Patch          string             `json:"patch"`
	SampleRate     float64            `json:"sample_rate"`
	Duration       float64            `json:"duration"`
	Steps          int                `json:"steps"`
	SolverFailures int                `json:"solver_failures"`
	Unstable       bool               `json:"unstable"`
	Params         map[string]float64 `json:"params,omitempty"`
	Samples        []float64          `json:"samples"`
	Metrics        map[string]float64 `json:"metrics"`
}

func NewExportData(result *sim.Result, params map[string]float64) ExportData {
	return ExportData{
		Patch:          result.Patch,
		SampleRate:     result.SampleRate,
		Duration:       result.Duration(),
		Steps:          len(result.Samples),
		SolverFailures: result.SolverFailures,
		Unstable:       result.Unstable,
		Params:         params,
		Samples:        result.Samples,
		Metrics:        result.Metrics,
	}
}

// WriteJSON encodes the render as indented JSON.
func WriteJSON(w io.Writer, result *sim.Result, params map[string]float64) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(result, params))
}

func ExportJSON(path string, result *sim.Result, params map[string]float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, result, params)
}
