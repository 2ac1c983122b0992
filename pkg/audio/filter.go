package audio

import "math"

// LowPass is a one-pole lowpass filter. The coefficient is derived from
// the cutoff each time it changes, so the cutoff can be swept smoothly
// while the filter runs.
type LowPass struct {
	sampleRate float64
	cutoff     float64
	coef       float64
	state      float64
}

// NewLowPass creates a filter at the given cutoff.
func NewLowPass(sampleRate, cutoffHz float64) *LowPass {
	f := &LowPass{sampleRate: sampleRate}
	f.SetCutoff(cutoffHz)
	return f
}

// SetCutoff retunes the filter. No-op when the cutoff is unchanged.
func (f *LowPass) SetCutoff(cutoffHz float64) {
	if cutoffHz == f.cutoff {
		return
	}
	f.cutoff = cutoffHz
	f.coef = 1 - math.Exp(-2*math.Pi*cutoffHz/f.sampleRate)
}

// Cutoff returns the current cutoff in Hz.
func (f *LowPass) Cutoff() float64 {
	return f.cutoff
}

// Process filters one sample.
func (f *LowPass) Process(x float64) float64 {
	f.state += f.coef * (x - f.state)
	return f.state
}

// Reset clears the filter state.
func (f *LowPass) Reset() {
	f.state = 0
}
