package galaxy

import "sync"

// Transform is the whole-field pose re-submitted to the renderer every
// frame. The field itself never mutates.
type Transform struct {
	RotationY float64 `json:"rotation_y"`
	RotationX float64 `json:"rotation_x"`
	Scale     float64 `json:"scale"`
}

// AnimatorConfig holds the animation feel constants.
type AnimatorConfig struct {
	// BaseSpin is the idle rotation speed in radians per second.
	BaseSpin float64 `toml:"base_spin"`

	// IntensitySpin is the extra rotation speed per unit intensity.
	IntensitySpin float64 `toml:"intensity_spin"`

	// TiltScale maps intensity to the target x-axis tilt.
	TiltScale float64 `toml:"tilt_scale"`

	// GrowScale maps intensity to extra uniform scale above 1.
	GrowScale float64 `toml:"grow_scale"`

	// Smoothing is the per-tick lerp factor for tilt and scale.
	Smoothing float64 `toml:"smoothing"`
}

// DefaultAnimatorConfig returns the tuned animation constants.
func DefaultAnimatorConfig() AnimatorConfig {
	return AnimatorConfig{
		BaseSpin:      0.05,
		IntensitySpin: 2.0,
		TiltScale:     0.5,
		GrowScale:     0.5,
		Smoothing:     0.1,
	}
}

// Animator advances the field transform each render frame as a function
// of true elapsed time and the current smoothed intensity, so behavior is
// frame-rate independent.
type Animator struct {
	cfg AnimatorConfig

	mu sync.RWMutex
	tf Transform
}

// NewAnimator creates an animator at the identity pose.
func NewAnimator(cfg AnimatorConfig) *Animator {
	return &Animator{
		cfg: cfg,
		tf:  Transform{Scale: 1},
	}
}

// Tick advances the transform by dt seconds at the given intensity.
// Rotation accumulates; tilt and scale approach intensity-proportional
// targets a fixed fraction per tick.
func (a *Animator) Tick(dt, intensity float64) Transform {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.tf.RotationY += a.cfg.BaseSpin*dt + intensity*a.cfg.IntensitySpin*dt
	a.tf.RotationX += (intensity*a.cfg.TiltScale - a.tf.RotationX) * a.cfg.Smoothing
	a.tf.Scale += (1 + intensity*a.cfg.GrowScale - a.tf.Scale) * a.cfg.Smoothing

	return a.tf
}

// Transform returns the current pose.
func (a *Animator) Transform() Transform {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tf
}
