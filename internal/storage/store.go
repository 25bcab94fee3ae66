package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/fdsynth/internal/sim"
	"github.com/sirupsen/logrus"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
	wavFile      = "output.wav"
)

var ErrEmptyRun = errors.New("storage: run has no samples")

type Store struct {
	baseDir string
	log     *logrus.Entry
}

func New(baseDir string) *Store {
	return &Store{
		baseDir: baseDir,
		log:     logrus.WithField("component", "storage"),
	}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Dir returns the directory holding the given run.
func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID             string             `json:"id"`
	Patch          string             `json:"patch"`
	Timestamp      time.Time          `json:"timestamp"`
	SampleRate     float64            `json:"sample_rate"`
	Duration       float64            `json:"duration"`
	Samples        int                `json:"samples"`
	SolverFailures int                `json:"solver_failures"`
	Unstable       bool               `json:"unstable"`
	Params         map[string]float64 `json:"params,omitempty"`
	Metrics        map[string]float64 `json:"metrics"`
}

// Save writes a render as metadata.json, samples.csv and a 16-bit mono
// output.wav under a fresh run directory and returns the run ID.
func (s *Store) Save(result *sim.Result, params map[string]float64) (string, error) {
	now := time.Now()
	runID, err := s.createRunDir(result.Patch, now)
	if err != nil {
		return "", err
	}
	runDir := s.Dir(runID)

	meta := RunMetadata{
		ID:             runID,
		Patch:          result.Patch,
		Timestamp:      now,
		SampleRate:     result.SampleRate,
		Duration:       result.Duration(),
		Samples:        len(result.Samples),
		SolverFailures: result.SolverFailures,
		Unstable:       result.Unstable,
		Params:         params,
		Metrics:        result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeSamplesCSV(filepath.Join(runDir, samplesFile), result.Samples, result.SampleRate); err != nil {
		return "", err
	}
	if len(result.Samples) > 0 {
		if err := WriteWAV(filepath.Join(runDir, wavFile), result.Samples, int(result.SampleRate)); err != nil {
			return "", err
		}
	}

	s.log.WithFields(logrus.Fields{
		"run":     runID,
		"patch":   result.Patch,
		"samples": len(result.Samples),
	}).Info("run saved")
	return runID, nil
}

// createRunDir picks an unused run ID of the form <patch>_<unix millis>.
func (s *Store) createRunDir(patch string, now time.Time) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	base := fmt.Sprintf("%s_%d", patch, now.UnixMilli())
	runID := base
	for i := 1; ; i++ {
		err := os.Mkdir(s.Dir(runID), 0755)
		if err == nil {
			return runID, nil
		}
		if !os.IsExist(err) {
			return "", err
		}
		runID = fmt.Sprintf("%s-%d", base, i)
	}
}

func writeSamplesCSV(path string, samples []float64, sampleRate float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"time", "value"}); err != nil {
		return err
	}
	for i, v := range samples {
		row := []string{
			strconv.FormatFloat(float64(i)/sampleRate, 'f', 6, 64),
			strconv.FormatFloat(v, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns the stored runs, oldest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			s.log.WithField("run", entry.Name()).WithError(err).Debug("skipping run")
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadSamples reads a run's samples.csv.
func (s *Store) LoadSamples(runID string) (values, times []float64, err error) {
	file, err := os.Open(filepath.Join(s.Dir(runID), samplesFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, []float64{}, nil
	}

	values = make([]float64, 0, len(records)-1)
	times = make([]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		times = append(times, t)
		values = append(values, v)
	}
	return values, times, nil
}

// WAVPath returns the path of a run's audio file.
func (s *Store) WAVPath(runID string) string {
	return filepath.Join(s.Dir(runID), wavFile)
}
