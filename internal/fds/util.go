package fds

import "math"

// Sgn returns -1, 0 or 1 depending on the sign of x.
func Sgn(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// Pos returns max(x, 0).
func Pos(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// Neg returns min(x, 0).
func Neg(x float64) float64 {
	if x < 0 {
		return x
	}
	return 0
}

// Pow2 returns x*x.
func Pow2(x float64) float64 {
	return x * x
}

// PitchToFreq converts a MIDI note number to a frequency in Hz (A4 = 69 = 440 Hz).
func PitchToFreq(pitch float64) float64 {
	const a4Freq = 440.0
	const a4Note = 69
	return a4Freq * math.Exp2((pitch-a4Note)/12)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
