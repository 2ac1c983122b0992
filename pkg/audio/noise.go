package audio

import "math/rand"

// One-pole autoregressive noise shaping. Each output leans on the last,
// which tilts the spectrum toward low frequencies ("reddened" noise) and
// reads as wind once lowpassed. The 3.5 factor compensates the level lost
// to the filter.
const (
	noiseBlend = 0.02
	noiseNorm  = 1.02
	noiseGain  = 3.5
)

// GenerateNoise renders n samples of loopable reddened noise in [-1,1]
// scale. The random source is injected so tests and the windwav tool can
// fix the seed.
func GenerateNoise(n int, rnd *rand.Rand) []float64 {
	buf := make([]float64, n)
	last := 0.0
	for i := range buf {
		white := rnd.Float64()*2 - 1
		out := (last + noiseBlend*white) / noiseNorm
		last = out
		buf[i] = out * noiseGain
	}
	return buf
}
