package motion

// Smoother is a discrete low-pass filter over the intensity signal. It is
// ticked once per render frame, independently of the detector rate, which
// decouples audio/visual smoothness from detector jitter.
type Smoother struct {
	factor float64
	value  float64
}

// NewSmoother creates a smoother with the given lerp factor.
func NewSmoother(factor float64) *Smoother {
	return &Smoother{factor: factor}
}

// Update moves the state a fixed fraction toward target and returns the
// new value. Repeated calls with a constant target converge monotonically
// without overshoot.
func (s *Smoother) Update(target float64) float64 {
	s.value += (target - s.value) * s.factor
	return s.value
}

// Value returns the current smoothed intensity.
func (s *Smoother) Value() float64 {
	return s.value
}

// SetFactor changes the lerp factor, for live tuning.
func (s *Smoother) SetFactor(factor float64) {
	s.factor = factor
}
