package motion

import (
	"math"
	"testing"
)

func TestSmoother_ConvergesMonotonically(t *testing.T) {
	s := NewSmoother(0.1)

	prev := 0.0
	for i := 0; i < 200; i++ {
		v := s.Update(1.0)
		if v <= prev && i > 0 {
			t.Fatalf("tick %d: value %v did not increase from %v", i, v, prev)
		}
		if v > 1.0 {
			t.Fatalf("tick %d: value %v overshot target", i, v)
		}
		prev = v
	}
	if math.Abs(prev-1.0) > 1e-6 {
		t.Errorf("value %v did not converge to target", prev)
	}
}

func TestSmoother_DecayMatchesGeometricSeries(t *testing.T) {
	s := NewSmoother(0.1)
	s.value = 0.8

	// With the target at 0 the state decays as 0.8 * 0.9^n.
	for n := 1; n <= 10; n++ {
		got := s.Update(0)
		want := 0.8 * math.Pow(0.9, float64(n))
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("tick %d: value = %v, want %v", n, got, want)
		}
	}
	if math.Abs(s.Value()-0.279) > 0.001 {
		t.Errorf("after 10 ticks value = %v, want about 0.279", s.Value())
	}
}

func TestTargetCell_LatestWins(t *testing.T) {
	var c TargetCell
	if c.Load() != 0 {
		t.Errorf("zero cell should load 0, got %v", c.Load())
	}

	c.Store(0.4)
	c.Store(1.2)
	if c.Load() != 1.2 {
		t.Errorf("Load = %v, want most recent value 1.2", c.Load())
	}
}
