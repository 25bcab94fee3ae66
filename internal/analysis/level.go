package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Peak returns the largest absolute sample value.
func Peak(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return floats.Norm(samples, math.Inf(1))
}

// RMS returns the root mean square of samples.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(samples, samples) / float64(len(samples)))
}

// Decay describes an exponential amplitude decay exp(-Rate*t).
type Decay struct {
	// Rate in 1/s.
	Rate float64
	// T60 is the time in seconds to fall by 60 dB.
	T60 float64
	// R2 is the coefficient of determination of the fit.
	R2 float64
}

// DecayRate fits an exponential decay to the peak level of consecutive
// windows of the given length in seconds. Silent windows are skipped.
func DecayRate(samples []float64, sampleRate, window float64) (Decay, error) {
	size := int(window * sampleRate)
	if size < 1 {
		return Decay{}, fmt.Errorf("%w: window of %g s at %g Hz", ErrTooShort, window, sampleRate)
	}

	var ts, logs []float64
	for start := 0; start+size <= len(samples); start += size {
		p := Peak(samples[start : start+size])
		if p <= 0 {
			continue
		}
		ts = append(ts, (float64(start)+float64(size)/2)/sampleRate)
		logs = append(logs, math.Log(p))
	}
	if len(ts) < 3 {
		return Decay{}, fmt.Errorf("%w: %d usable windows", ErrTooShort, len(ts))
	}

	alpha, slope := stat.LinearRegression(ts, logs, nil, false)
	d := Decay{
		Rate: -slope,
		R2:   stat.RSquared(ts, logs, nil, alpha, slope),
	}
	if d.Rate > 0 {
		d.T60 = math.Log(1000) / d.Rate
	} else {
		d.T60 = math.Inf(1)
	}
	return d, nil
}

// Report summarizes a rendered signal.
type Report struct {
	Samples    int     `json:"samples"`
	Duration   float64 `json:"duration"`
	Peak       float64 `json:"peak"`
	RMS        float64 `json:"rms"`
	Dominant   float64 `json:"dominant_hz"`
	Crossing   float64 `json:"crossing_hz"`
	DecayRate  float64 `json:"decay_rate"`
	T60        float64 `json:"t60"`
	DecayValid bool    `json:"decay_valid"`
}

// Summarize measures samples. The decay fields are left zero with
// DecayValid false when the signal is too short to fit.
func Summarize(samples []float64, sampleRate float64) Report {
	r := Report{
		Samples: len(samples),
		Peak:    Peak(samples),
		RMS:     RMS(samples),
	}
	if sampleRate > 0 {
		r.Duration = float64(len(samples)) / sampleRate
		r.Crossing = CrossingFrequency(samples, sampleRate)
	}
	if f, err := DominantFrequency(samples, sampleRate); err == nil {
		r.Dominant = f
	}
	if d, err := DecayRate(samples, sampleRate, 0.01); err == nil {
		r.DecayRate = d.Rate
		r.T60 = d.T60
		r.DecayValid = true
	}
	return r
}
