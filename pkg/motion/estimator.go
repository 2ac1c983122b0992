// Package motion turns discrete hand-landmark samples into a smooth
// motion-intensity scalar that drives audio and visuals.
package motion

import (
	"math"
	"time"
)

// Sample is one wrist position in normalized image coordinates, with the
// capture timestamp reported by the detector.
type Sample struct {
	X, Y float64
	T    time.Time
}

// Estimator derives instantaneous motion intensity from successive
// landmark samples. It remembers only the previous sample.
type Estimator struct {
	cfg  Config
	prev Sample
	has  bool
}

// NewEstimator creates an estimator with the given tuning.
func NewEstimator(cfg Config) *Estimator {
	return &Estimator{cfg: cfg}
}

// Observe consumes the next sample and returns the clamped raw intensity.
// ok is false when no intensity could be computed: the first sample after
// a reset, or a sample whose timestamp does not advance. Non-monotonic
// timestamps leave the estimator state untouched.
func (e *Estimator) Observe(s Sample) (intensity float64, ok bool) {
	if !e.has {
		e.prev = s
		e.has = true
		return 0, false
	}

	dt := s.T.Sub(e.prev.T).Seconds()
	if dt <= 0 {
		return 0, false
	}

	dx := s.X - e.prev.X
	dy := s.Y - e.prev.Y
	dist := math.Hypot(dx, dy)

	e.prev = s

	v := dist / dt * e.cfg.Sensitivity
	if v > e.cfg.MaxIntensity {
		v = e.cfg.MaxIntensity
	}
	return v, true
}

// Reset clears the previous-sample memory. Call this whenever the hand
// is lost so a reacquired hand is not measured against a stale sample.
func (e *Estimator) Reset() {
	e.has = false
	e.prev = Sample{}
}

// SetConfig swaps the tuning constants, for live adjustment.
func (e *Estimator) SetConfig(cfg Config) {
	e.cfg = cfg
}
