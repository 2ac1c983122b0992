package session

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stillpoint/nebula/pkg/audio"
	"github.com/stillpoint/nebula/pkg/galaxy"
	"github.com/stillpoint/nebula/pkg/landmark"
	"github.com/stillpoint/nebula/pkg/motion"
)

// stubVideo hands out a constant frame; the mock detector ignores it.
type stubVideo struct {
	mu     sync.Mutex
	closed bool
	err    error
}

func (v *stubVideo) CaptureJPEG() ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		return nil, v.err
	}
	return []byte{0xff, 0xd8}, nil
}

func (v *stubVideo) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	return nil
}

func newTestSession(det landmark.Detector) (*Session, *stubVideo, *audio.MockSink) {
	acfg := audio.DefaultConfig()
	acfg.Backend = audio.BackendMock
	acfg.NoiseDuration = time.Second
	sink := audio.NewMockSink(acfg, nil)
	synth := audio.NewSynthesizer(acfg, sink, nil, rand.New(rand.NewSource(1)))

	video := &stubVideo{}
	s := New(DefaultConfig(), Deps{
		Video:    video,
		Detector: det,
		Synth:    synth,
		Animator: galaxy.NewAnimator(galaxy.DefaultAnimatorConfig()),
		Motion:   motion.DefaultConfig(),
	})
	return s, video, sink
}

func TestSession_SweepProducesClampedTarget(t *testing.T) {
	t0 := time.Unix(100, 0)
	det := landmark.NewMockDetector(
		landmark.HandAt(0.1, 0.1, t0),
		landmark.HandAt(0.3, 0.1, t0.Add(100*time.Millisecond)),
	)
	s, _, _ := newTestSession(det)

	// 0.2 normalized units in 0.1s doubles to 4.0/s and clamps to 1.5.
	s.captureTick()
	if got := s.target.Load(); got != 0 {
		t.Errorf("target after first frame = %v, want 0", got)
	}
	s.captureTick()
	if got := s.target.Load(); math.Abs(got-1.5) > 1e-9 {
		t.Errorf("target after sweep = %v, want 1.5", got)
	}
}

func TestSession_HandLossDecaysIntensity(t *testing.T) {
	t0 := time.Unix(100, 0)
	det := landmark.NewMockDetector(
		landmark.HandAt(0.1, 0.1, t0),
		landmark.HandAt(0.3, 0.1, t0.Add(100*time.Millisecond)),
		nil, // hand lost from here on
	)
	s, _, _ := newTestSession(det)

	s.captureTick()
	s.captureTick()

	// Pump the smoothed value up toward the 1.5 target.
	for i := 0; i < 40; i++ {
		s.renderTick(0.016)
	}
	before := s.Intensity()
	if before < 0.8 {
		t.Fatalf("smoothed intensity = %v, expected buildup above 0.8", before)
	}

	// Hand disappears: the target drops to 0 and each render tick keeps
	// 90% of the previous value.
	s.captureTick()
	for n := 1; n <= 10; n++ {
		s.renderTick(0.016)
		want := before * math.Pow(0.9, float64(n))
		if math.Abs(s.Intensity()-want) > 1e-9 {
			t.Fatalf("tick %d: intensity = %v, want %v", n, s.Intensity(), want)
		}
	}
}

func TestSession_ReacquiredHandIsNotASpike(t *testing.T) {
	t0 := time.Unix(100, 0)
	det := landmark.NewMockDetector(
		landmark.HandAt(0.1, 0.1, t0),
		nil, // lost
		landmark.HandAt(0.9, 0.9, t0.Add(5*time.Second)),
	)
	s, _, _ := newTestSession(det)

	s.captureTick() // first sighting
	s.captureTick() // lost: estimator memory cleared
	s.captureTick() // reacquired far away

	// Without the reset this would read as a huge velocity.
	if got := s.target.Load(); got != 0 {
		t.Errorf("target after reacquire = %v, want 0", got)
	}
}

func TestSession_DetectorErrorKeepsLastTarget(t *testing.T) {
	t0 := time.Unix(100, 0)
	det := landmark.NewMockDetector(
		landmark.HandAt(0.1, 0.1, t0),
		landmark.HandAt(0.2, 0.1, t0.Add(100*time.Millisecond)),
	)
	s, video, _ := newTestSession(det)

	s.captureTick()
	s.captureTick()
	want := s.target.Load()
	if want == 0 {
		t.Fatal("expected nonzero target after motion")
	}

	// A capture failure is a missed frame, not a zeroed signal.
	video.mu.Lock()
	video.err = errors.New("device busy")
	video.mu.Unlock()
	s.captureTick()

	if got := s.target.Load(); got != want {
		t.Errorf("target after capture error = %v, want unchanged %v", got, want)
	}
}

func TestSession_RenderTickFansOut(t *testing.T) {
	t0 := time.Unix(100, 0)
	det := landmark.NewMockDetector(
		landmark.HandAt(0.1, 0.1, t0),
		landmark.HandAt(0.3, 0.1, t0.Add(100*time.Millisecond)),
	)
	s, _, _ := newTestSession(det)

	var frames []FrameState
	s.deps.OnFrame = func(f FrameState) { frames = append(frames, f) }

	s.captureTick()
	s.captureTick()
	for i := 0; i < 30; i++ {
		s.renderTick(0.016)
	}

	if len(frames) != 30 {
		t.Fatalf("got %d frames, want 30", len(frames))
	}
	last := frames[len(frames)-1]
	if last.Intensity <= frames[0].Intensity {
		t.Error("intensity should build up across ticks")
	}
	if last.Transform.RotationY <= 0 {
		t.Error("rotation should accumulate")
	}
	if last.Transform.Scale <= 1 {
		t.Error("scale should grow with intensity")
	}

	// Stats saw the same ticks.
	sum := s.Summary()
	if sum.SampleCount == 0 {
		t.Error("stats should have recorded above-deadband ticks")
	}
	if math.Abs(sum.PeakIntensity-last.Intensity) > 0.2 {
		t.Errorf("peak %v should be near final intensity %v", sum.PeakIntensity, last.Intensity)
	}
}

func TestSession_RunStopsCleanly(t *testing.T) {
	det := landmark.NewMockDetector(nil)
	s, video, sink := newTestSession(det)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(80 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	video.mu.Lock()
	closed := video.closed
	video.mu.Unlock()
	if !closed {
		t.Error("capture device should be released on stop")
	}
	if sink.Running() {
		t.Error("audio sink should be stopped")
	}
	if s.deps.Synth.Initialized() {
		t.Error("synthesizer should be uninitialized after stop")
	}
}

func TestSession_ApplyTuning(t *testing.T) {
	det := landmark.NewMockDetector(nil)
	s, _, _ := newTestSession(det)

	m := motion.DefaultConfig()
	m.LerpFactor = 0.5
	s.ApplyTuning(m)

	s.target.Store(1.0)
	s.renderTick(0.016)
	if math.Abs(s.Intensity()-0.5) > 1e-9 {
		t.Errorf("intensity = %v, want 0.5 with lerp factor 0.5", s.Intensity())
	}
}
