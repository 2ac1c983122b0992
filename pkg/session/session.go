// Package session orchestrates one run of the sensor-to-effect pipeline:
// the capture loop feeds the velocity estimator, the render loop drives
// smoothing, audio, field animation and statistics.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/stillpoint/nebula/pkg/audio"
	"github.com/stillpoint/nebula/pkg/capture"
	"github.com/stillpoint/nebula/pkg/galaxy"
	"github.com/stillpoint/nebula/pkg/landmark"
	"github.com/stillpoint/nebula/pkg/motion"
)

// Config holds the loop timing.
type Config struct {
	// RenderInterval paces the render loop: smoothing, audio update,
	// field animation, stats.
	RenderInterval time.Duration `toml:"render_interval"`

	// CaptureInterval paces the capture loop: webcam frame, detection,
	// velocity estimation. Typically slower than the render loop; the
	// two are deliberately decoupled.
	CaptureInterval time.Duration `toml:"capture_interval"`
}

// DefaultConfig returns loop timings for a 60 Hz render pace and a 10 Hz
// detection pace.
func DefaultConfig() Config {
	return Config{
		RenderInterval:  16 * time.Millisecond,
		CaptureInterval: 100 * time.Millisecond,
	}
}

// FrameState is the per-tick state broadcast to renderers.
type FrameState struct {
	Transform galaxy.Transform `json:"transform"`
	Intensity float64          `json:"intensity"`
	Gain      float64          `json:"gain"`
	CutoffHz  float64          `json:"cutoff_hz"`
}

// Deps are the session's collaborators.
type Deps struct {
	Video    capture.Source
	Detector landmark.Detector
	Synth    *audio.Synthesizer
	Animator *galaxy.Animator
	Motion   motion.Config
	Logger   *slog.Logger

	// OnFrame, when set, receives the state of every render tick.
	OnFrame func(FrameState)
}

// Session runs the pipeline until its context is cancelled.
type Session struct {
	cfg  Config
	deps Deps

	// mu guards the pipeline state shared between the run loop and
	// live-tuning/status callers.
	mu        sync.Mutex
	estimator *motion.Estimator
	smoother  *motion.Smoother
	stats     *Stats
	intensity float64

	target motion.TargetCell
}

// New assembles a session from its collaborators.
func New(cfg Config, deps Deps) *Session {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Session{
		cfg:       cfg,
		deps:      deps,
		estimator: motion.NewEstimator(deps.Motion),
		smoother:  motion.NewSmoother(deps.Motion.LerpFactor),
		stats:     NewStats(deps.Motion.Deadband),
	}
}

// Run starts both loops and blocks until ctx is cancelled. On return the
// audio graph is stopped and the capture device and detector released.
// An unavailable audio output is logged and the session continues silent;
// nothing in the pipeline is fatal.
func (s *Session) Run(ctx context.Context) {
	log := s.deps.Logger

	if err := s.deps.Synth.Init(ctx); err != nil {
		log.Error("audio output unavailable, session continues silent", "error", err)
	} else if err := s.deps.Synth.Resume(); err != nil {
		log.Warn("audio resume failed", "error", err)
	}

	s.stats.Start()

	renderTicker := time.NewTicker(s.cfg.RenderInterval)
	captureTicker := time.NewTicker(s.cfg.CaptureInterval)
	defer renderTicker.Stop()
	defer captureTicker.Stop()

	log.Info("session started",
		"render_interval", s.cfg.RenderInterval,
		"capture_interval", s.cfg.CaptureInterval,
	)

	lastRender := time.Now()

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return

		case now := <-renderTicker.C:
			dt := now.Sub(lastRender).Seconds()
			lastRender = now
			s.renderTick(dt)

		case <-captureTicker.C:
			s.captureTick()
		}
	}
}

// renderTick advances the effect side by dt seconds of real elapsed time.
func (s *Session) renderTick(dt float64) {
	s.mu.Lock()
	smoothed := s.smoother.Update(s.target.Load())
	s.intensity = smoothed
	s.mu.Unlock()

	s.deps.Synth.Update(smoothed)
	tf := s.deps.Animator.Tick(dt, smoothed)
	s.stats.Record(smoothed)

	if s.deps.OnFrame != nil {
		gain, cutoff := s.deps.Synth.Params()
		s.deps.OnFrame(FrameState{
			Transform: tf,
			Intensity: smoothed,
			Gain:      gain,
			CutoffHz:  cutoff,
		})
	}
}

// captureTick grabs a frame, runs detection and publishes the latest raw
// intensity target. Every failure mode here degrades to "no motion seen
// this frame"; the render loop keeps going regardless.
func (s *Session) captureTick() {
	jpeg, err := s.deps.Video.CaptureJPEG()
	if err != nil {
		s.deps.Logger.Debug("frame capture failed", "error", err)
		return
	}

	hands, err := s.deps.Detector.Detect(jpeg)
	if err != nil {
		s.deps.Logger.Debug("detection failed", "error", err)
		return
	}

	best := landmark.SelectBest(hands)

	s.mu.Lock()
	defer s.mu.Unlock()

	if best == nil {
		// Hand gone: decay toward stillness and forget the previous
		// sample so a reacquired hand is not compared against it.
		s.estimator.Reset()
		s.target.Store(0)
		return
	}

	wrist, ok := best.Wrist()
	if !ok {
		return
	}

	raw, ok := s.estimator.Observe(motion.Sample{
		X: wrist.X,
		Y: wrist.Y,
		T: best.CapturedAt,
	})
	if ok {
		s.target.Store(raw)
	}
}

func (s *Session) shutdown() {
	log := s.deps.Logger

	if err := s.deps.Synth.Stop(); err != nil {
		log.Warn("audio stop failed", "error", err)
	}
	if err := s.deps.Video.Close(); err != nil {
		log.Warn("video release failed", "error", err)
	}
	if err := s.deps.Detector.Close(); err != nil {
		log.Warn("detector close failed", "error", err)
	}
	log.Info("session stopped")
}

// Summary finalizes and returns the session statistics.
func (s *Session) Summary() Summary {
	return s.stats.Finalize()
}

// Intensity returns the latest smoothed intensity.
func (s *Session) Intensity() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intensity
}

// ApplyTuning swaps in new motion feel constants between ticks.
func (s *Session) ApplyTuning(m motion.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.estimator.SetConfig(m)
	s.smoother.SetFactor(m.LerpFactor)
	s.stats.SetDeadband(m.Deadband)
	s.deps.Logger.Info("motion tuning applied",
		"sensitivity", m.Sensitivity,
		"max_intensity", m.MaxIntensity,
		"lerp_factor", m.LerpFactor,
		"deadband", m.Deadband,
	)
}
