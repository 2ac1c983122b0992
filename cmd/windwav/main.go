// windwav renders the wind-noise source to a WAV file so the noise and
// filter constants can be auditioned without a session.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"

	"github.com/stillpoint/nebula/pkg/audio"
)

func main() {
	out := flag.String("out", "wind.wav", "Output WAV file")
	seconds := flag.Float64("seconds", 8, "Length of audio to render")
	intensity := flag.Float64("intensity", 0.5, "Fixed motion intensity to render at (0-1.5)")
	seed := flag.Int64("seed", 0, "Random seed (0 = time-based)")
	flag.Parse()

	cfg := audio.DefaultConfig()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(*seed))

	noiseLen := int(float64(cfg.SampleRate) * cfg.NoiseDuration.Seconds())
	noise := audio.GenerateNoise(noiseLen, rnd)

	gain := math.Min(cfg.GainScale*(*intensity), cfg.MaxGain)
	cutoff := cfg.MinCutoffHz + cfg.CutoffRangeHz*(*intensity)
	filter := audio.NewLowPass(float64(cfg.SampleRate), cutoff)

	fmt.Printf("Rendering %.1fs of wind at intensity %.2f (gain %.2f, cutoff %.0f Hz) to %s\n",
		*seconds, *intensity, gain, cutoff, *out)

	total := int(float64(cfg.SampleRate) * *seconds)
	rendered := 0
	pos := 0

	streamer := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if rendered >= total {
			return 0, false
		}
		n := len(samples)
		if remaining := total - rendered; remaining < n {
			n = remaining
		}
		for i := 0; i < n; i++ {
			v := filter.Process(noise[pos]) * gain
			pos++
			if pos == len(noise) {
				pos = 0
			}
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			samples[i][0] = v
			samples[i][1] = v
		}
		rendered += n
		return n, true
	})

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", *out, err)
		os.Exit(1)
	}
	defer f.Close()

	format := beep.Format{
		SampleRate:  beep.SampleRate(cfg.SampleRate),
		NumChannels: 2,
		Precision:   2,
	}
	if err := wav.Encode(f, streamer, format); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}
