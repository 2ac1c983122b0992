package motion

import (
	"math"
	"testing"
	"time"
)

func sampleAt(x, y float64, ms int) Sample {
	base := time.Unix(0, 0)
	return Sample{X: x, Y: y, T: base.Add(time.Duration(ms) * time.Millisecond)}
}

func TestEstimator_FirstSampleYieldsNothing(t *testing.T) {
	e := NewEstimator(DefaultConfig())

	v, ok := e.Observe(sampleAt(0.5, 0.5, 0))
	if ok {
		t.Errorf("first sample should not produce intensity, got %v", v)
	}
}

func TestEstimator_VelocityFormula(t *testing.T) {
	tests := []struct {
		name string
		a, b Sample
		want float64
	}{
		{
			// distance 0.2 over 0.1s -> 2.0/s, *2 sensitivity = 4.0, clamped
			name: "fast sweep clamps at max",
			a:    sampleAt(0.1, 0.1, 0),
			b:    sampleAt(0.3, 0.1, 100),
			want: 1.5,
		},
		{
			// distance 0.05 over 0.1s -> 0.5/s, *2 = 1.0
			name: "moderate motion below clamp",
			a:    sampleAt(0.2, 0.2, 0),
			b:    sampleAt(0.25, 0.2, 100),
			want: 1.0,
		},
		{
			name: "stationary hand",
			a:    sampleAt(0.4, 0.4, 0),
			b:    sampleAt(0.4, 0.4, 100),
			want: 0,
		},
		{
			// diagonal: distance sqrt(0.03^2+0.04^2)=0.05 over 0.2s -> 0.25/s, *2 = 0.5
			name: "diagonal motion uses euclidean distance",
			a:    sampleAt(0.5, 0.5, 0),
			b:    sampleAt(0.53, 0.54, 200),
			want: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEstimator(DefaultConfig())
			e.Observe(tt.a)
			got, ok := e.Observe(tt.b)
			if !ok {
				t.Fatal("expected intensity to be computed")
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("intensity = %v, want %v", got, tt.want)
			}
			if got < 0 {
				t.Errorf("intensity must be non-negative, got %v", got)
			}
		})
	}
}

func TestEstimator_NonMonotonicTimestamp(t *testing.T) {
	e := NewEstimator(DefaultConfig())
	e.Observe(sampleAt(0.1, 0.1, 100))

	// Timestamp going backwards must be a silent no-op.
	v, ok := e.Observe(sampleAt(0.9, 0.9, 50))
	if ok {
		t.Errorf("dt <= 0 should not produce intensity, got %v", v)
	}

	// Equal timestamps too.
	if _, ok := e.Observe(sampleAt(0.9, 0.9, 100)); ok {
		t.Error("dt == 0 should not produce intensity")
	}

	// Internal state must be unchanged: the next valid sample is still
	// measured against the original previous sample.
	got, ok := e.Observe(sampleAt(0.2, 0.1, 200))
	if !ok {
		t.Fatal("expected intensity after valid sample")
	}
	// distance 0.1 over 0.1s -> 1.0/s, *2 = 2.0, clamped to 1.5
	if math.Abs(got-1.5) > 1e-9 {
		t.Errorf("intensity = %v, want 1.5 (measured against pre-glitch sample)", got)
	}
}

func TestEstimator_ResetClearsMemory(t *testing.T) {
	e := NewEstimator(DefaultConfig())
	e.Observe(sampleAt(0.1, 0.1, 0))
	e.Reset()

	// After a reset the next sample is a "first" sample again, so a hand
	// reacquired far away does not register as a velocity spike.
	if v, ok := e.Observe(sampleAt(0.9, 0.9, 5000)); ok {
		t.Errorf("sample after reset should not produce intensity, got %v", v)
	}
}
