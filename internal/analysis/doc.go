// Package analysis provides offline measurements of rendered audio.
//
//   - [Spectrum]: Hann-windowed magnitude spectrum
//   - [DominantFrequency]: strongest spectral peak with sub-bin refinement
//   - [CrossingFrequency]: pitch estimate from upward zero crossings
//   - [Peak], [RMS]: level measurements
//   - [DecayRate]: exponential decay fitted to the windowed envelope
//   - [Summarize]: all of the above in one [Report]
//
// # Decay
//
// A freely ringing string decays as exp(-rate*t). DecayRate fits a line to
// the log of the per-window peak level, so
//
//	d, err := analysis.DecayRate(samples, 44100, 0.01)
//	t60 := d.T60 // seconds to fall by 60 dB
package analysis
