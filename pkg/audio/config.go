// Package audio synthesizes the procedural wind sound: a loopable
// reddened-noise source through a lowpass filter and gain stage, both
// driven by the smoothed motion intensity.
package audio

import (
	"fmt"
	"time"
)

// Backend selects the audio output implementation.
type Backend string

const (
	// BackendSpeaker plays on the local output device via oto.
	BackendSpeaker Backend = "speaker"
	// BackendMock discards audio but records it for tests.
	BackendMock Backend = "mock"
)

// Config holds audio synthesis and output configuration. The mapping
// constants (GainScale, MaxGain, cutoff range) are empirically tuned feel
// values, kept as configuration.
type Config struct {
	// Backend specifies which audio sink to use.
	Backend Backend `toml:"backend"`

	// SampleRate is the output sample rate in Hz. 48000 keeps the opus
	// monitoring encoder happy.
	SampleRate int `toml:"sample_rate"`

	// Channels is the number of output channels.
	Channels int `toml:"channels"`

	// BufferDuration is the size of each rendered chunk.
	BufferDuration time.Duration `toml:"buffer_duration"`

	// NoiseDuration is the length of the looped noise buffer. Multiple
	// seconds keeps the loop seam imperceptible.
	NoiseDuration time.Duration `toml:"noise_duration"`

	// GainScale maps intensity to target gain before clamping.
	GainScale float64 `toml:"gain_scale"`

	// MaxGain is the gain ceiling.
	MaxGain float64 `toml:"max_gain"`

	// MinCutoffHz is the lowpass cutoff at zero intensity.
	MinCutoffHz float64 `toml:"min_cutoff_hz"`

	// CutoffRangeHz is the cutoff rise per unit intensity.
	CutoffRangeHz float64 `toml:"cutoff_range_hz"`

	// GainTau and CutoffTau are the exponential-approach time constants
	// for parameter transitions. Distinct values avoid audible clicking
	// without making the filter feel sluggish.
	GainTau   time.Duration `toml:"gain_tau"`
	CutoffTau time.Duration `toml:"cutoff_tau"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() Config {
	return Config{
		Backend:        BackendSpeaker,
		SampleRate:     48000,
		Channels:       1,
		BufferDuration: 20 * time.Millisecond,
		NoiseDuration:  4 * time.Second,
		GainScale:      1.5,
		MaxGain:        0.8,
		MinCutoffHz:    200,
		CutoffRangeHz:  1500,
		GainTau:        100 * time.Millisecond,
		CutoffTau:      200 * time.Millisecond,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("audio: sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("audio: channels must be positive, got %d", c.Channels)
	}
	if c.BufferDuration <= 0 {
		return fmt.Errorf("audio: buffer_duration must be positive, got %v", c.BufferDuration)
	}
	if c.NoiseDuration < time.Second {
		return fmt.Errorf("audio: noise_duration must be at least 1s, got %v", c.NoiseDuration)
	}
	if c.GainTau <= 0 || c.CutoffTau <= 0 {
		return fmt.Errorf("audio: parameter time constants must be positive")
	}
	return nil
}

// BufferSize returns the number of frames per rendered chunk.
func (c *Config) BufferSize() int {
	return int(float64(c.SampleRate) * c.BufferDuration.Seconds())
}
