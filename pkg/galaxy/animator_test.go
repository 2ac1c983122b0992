package galaxy

import (
	"math"
	"testing"
)

func TestAnimator_RotationAccumulates(t *testing.T) {
	a := NewAnimator(DefaultAnimatorConfig())

	// One second of idle ticks: rotation advances by BaseSpin.
	for i := 0; i < 100; i++ {
		a.Tick(0.01, 0)
	}
	tf := a.Transform()
	if math.Abs(tf.RotationY-0.05) > 1e-9 {
		t.Errorf("idle rotationY = %v, want 0.05", tf.RotationY)
	}

	// One second at intensity 1: base plus intensity spin.
	a = NewAnimator(DefaultAnimatorConfig())
	for i := 0; i < 100; i++ {
		a.Tick(0.01, 1.0)
	}
	tf = a.Transform()
	if math.Abs(tf.RotationY-2.05) > 1e-9 {
		t.Errorf("active rotationY = %v, want 2.05", tf.RotationY)
	}
}

func TestAnimator_TiltAndScaleApproachTargets(t *testing.T) {
	a := NewAnimator(DefaultAnimatorConfig())

	var tf Transform
	for i := 0; i < 300; i++ {
		tf = a.Tick(0.016, 1.0)
	}

	if math.Abs(tf.RotationX-0.5) > 1e-3 {
		t.Errorf("rotationX = %v, want to approach 0.5", tf.RotationX)
	}
	if math.Abs(tf.Scale-1.5) > 1e-3 {
		t.Errorf("scale = %v, want to approach 1.5", tf.Scale)
	}

	// Dropping back to zero intensity relaxes tilt and scale.
	for i := 0; i < 300; i++ {
		tf = a.Tick(0.016, 0)
	}
	if math.Abs(tf.RotationX) > 1e-3 {
		t.Errorf("rotationX = %v, want to relax toward 0", tf.RotationX)
	}
	if math.Abs(tf.Scale-1) > 1e-3 {
		t.Errorf("scale = %v, want to relax toward 1", tf.Scale)
	}
}

func TestAnimator_FrameRateIndependentRotation(t *testing.T) {
	cfg := DefaultAnimatorConfig()

	fast := NewAnimator(cfg)
	for i := 0; i < 200; i++ {
		fast.Tick(0.005, 0.7)
	}

	slow := NewAnimator(cfg)
	for i := 0; i < 20; i++ {
		slow.Tick(0.05, 0.7)
	}

	// Same elapsed time, same constant intensity: accumulated rotation
	// must agree regardless of tick rate.
	if math.Abs(fast.Transform().RotationY-slow.Transform().RotationY) > 1e-9 {
		t.Errorf("rotation differs across frame rates: %v vs %v",
			fast.Transform().RotationY, slow.Transform().RotationY)
	}
}
