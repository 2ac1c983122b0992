package motion

import "fmt"

// Config holds all tunable parameters for the motion-intensity pipeline.
//
// Sensitivity and MaxIntensity are empirically tuned "feel" constants,
// carried as configuration rather than hard-coded law.
type Config struct {
	// Sensitivity scales raw hand velocity (normalized units/second)
	// before clamping.
	Sensitivity float64 `toml:"sensitivity" json:"sensitivity"`

	// MaxIntensity is the upper clamp on raw intensity.
	MaxIntensity float64 `toml:"max_intensity" json:"max_intensity"`

	// LerpFactor is the fraction of the remaining distance to the target
	// the smoother covers per render tick. Higher = snappier, noisier.
	LerpFactor float64 `toml:"lerp_factor" json:"lerp_factor"`

	// Deadband is the smoothed-intensity floor below which session
	// statistics ignore the signal as near-zero noise.
	Deadband float64 `toml:"deadband" json:"deadband"`
}

// DefaultConfig returns the recommended configuration for responsive,
// jitter-free motion tracking.
func DefaultConfig() Config {
	return Config{
		Sensitivity:  2.0,
		MaxIntensity: 1.5,
		LerpFactor:   0.1,
		Deadband:     0.05,
	}
}

// Validate rejects tunings that would stall or destabilize the pipeline.
func (c Config) Validate() error {
	if c.Sensitivity <= 0 {
		return fmt.Errorf("sensitivity must be positive, got %v", c.Sensitivity)
	}
	if c.MaxIntensity <= 0 {
		return fmt.Errorf("max_intensity must be positive, got %v", c.MaxIntensity)
	}
	if c.LerpFactor <= 0 || c.LerpFactor > 1 {
		return fmt.Errorf("lerp_factor must be in (0,1], got %v", c.LerpFactor)
	}
	if c.Deadband < 0 {
		return fmt.Errorf("deadband must not be negative, got %v", c.Deadband)
	}
	return nil
}
