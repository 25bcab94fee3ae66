package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// ErrTooShort indicates a signal too short for the requested measurement.
var ErrTooShort = errors.New("analysis: signal too short")

// Spectrum returns the magnitudes of the Hann-windowed FFT of samples for
// bins 0..n/2 and the frequency of each bin.
func Spectrum(samples []float64, sampleRate float64) (freqs, mags []float64) {
	n := len(samples)
	if n < 2 {
		return nil, nil
	}

	windowed := make([]float64, n)
	for i, v := range samples {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = v * w
	}
	spectrum := fft.FFTReal(windowed)

	bins := n/2 + 1
	freqs = make([]float64, bins)
	mags = make([]float64, bins)
	for i := 0; i < bins; i++ {
		freqs[i] = float64(i) * sampleRate / float64(n)
		mags[i] = cmplx.Abs(spectrum[i])
	}
	return freqs, mags
}

// DominantFrequency returns the frequency of the strongest non-DC spectral
// peak, refined by parabolic interpolation of the log magnitudes around it.
func DominantFrequency(samples []float64, sampleRate float64) (float64, error) {
	if len(samples) < 4 {
		return 0, ErrTooShort
	}
	freqs, mags := Spectrum(samples, sampleRate)

	best := 1
	for i := 2; i < len(mags); i++ {
		if mags[i] > mags[best] {
			best = i
		}
	}
	if mags[best] == 0 {
		return 0, nil
	}
	if best == len(mags)-1 {
		return freqs[best], nil
	}

	a := math.Log(mags[best-1] + 1e-300)
	b := math.Log(mags[best])
	c := math.Log(mags[best+1] + 1e-300)
	offset := 0.0
	if den := a - 2*b + c; den != 0 {
		offset = 0.5 * (a - c) / den
	}
	return (float64(best) + offset) * sampleRate / float64(len(samples)), nil
}

// CrossingFrequency estimates the fundamental from the number of upward
// zero crossings per second.
func CrossingFrequency(samples []float64, sampleRate float64) float64 {
	if len(samples) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(samples); i++ {
		if samples[i-1] < 0 && samples[i] >= 0 {
			crossings++
		}
	}
	return float64(crossings) * sampleRate / float64(len(samples))
}
