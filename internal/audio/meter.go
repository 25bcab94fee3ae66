package audio

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/mjibson/go-dsp/fft"
)

// Band edges in Hz.
const (
	lowCutoff  = 250.0
	midCutoff  = 2000.0
	highCutoff = 10000.0
)

// Meter tracks the smoothed share of output energy in the low, mid and
// high bands. Observe runs on the audio thread, Levels on any other.
type Meter struct {
	sampleRate float64
	buffer     []complex128

	mu             sync.Mutex
	low, mid, high float64
	peak           float64
	smoothing      float64
}

func NewMeter(sampleRate float64) *Meter {
	return &Meter{sampleRate: sampleRate, smoothing: 0.9}
}

// Observe analyses one output block.
func (m *Meter) Observe(block []float32) {
	n := len(block)
	if n < 2 {
		return
	}
	if len(m.buffer) != n {
		m.buffer = make([]complex128, n)
	}

	peak := 0.0
	for i, v := range block {
		window := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		m.buffer[i] = complex(float64(v)*window, 0)
		peak = math.Max(peak, math.Abs(float64(v)))
	}
	spectrum := fft.FFT(m.buffer)

	binWidth := m.sampleRate / float64(n)
	var low, mid, high float64
	for i := 1; i < n/2; i++ {
		mag := cmplx.Abs(spectrum[i])
		e := mag * mag
		switch f := float64(i) * binWidth; {
		case f < lowCutoff:
			low += e
		case f < midCutoff:
			mid += e
		case f < highCutoff:
			high += e
		}
	}

	total := low + mid + high
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.smoothing
	if total > 0 {
		m.low = m.low*a + low/total*(1-a)
		m.mid = m.mid*a + mid/total*(1-a)
		m.high = m.high*a + high/total*(1-a)
	}
	if peak > m.peak {
		m.peak = peak
	} else {
		m.peak = m.peak*a + peak*(1-a)
	}
}

// Levels returns the smoothed band shares and peak level.
func (m *Meter) Levels() (low, mid, high, peak float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.low, m.mid, m.high, m.peak
}
