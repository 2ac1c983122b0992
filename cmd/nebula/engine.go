package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/stillpoint/nebula/internal/config"
	"github.com/stillpoint/nebula/pkg/audio"
	"github.com/stillpoint/nebula/pkg/capture"
	"github.com/stillpoint/nebula/pkg/galaxy"
	"github.com/stillpoint/nebula/pkg/insight"
	"github.com/stillpoint/nebula/pkg/landmark"
	"github.com/stillpoint/nebula/pkg/motion"
	"github.com/stillpoint/nebula/pkg/session"
	"github.com/stillpoint/nebula/pkg/web"
)

// Session lifecycle errors, surfaced through the dashboard.
var (
	ErrAlreadyRunning = errors.New("session already running")
	ErrNotRunning     = errors.New("no session running")
)

// engine owns the session lifecycle: it builds a fresh capture, detector
// and synthesizer for every session and tears them down on stop. The
// audio sink is the exception: oto supports only one hardware context
// per process, so the sink is created once here and restarted across
// sessions rather than rebuilt.
type engine struct {
	ctx      context.Context
	cfg      *config.Config
	log      *slog.Logger
	server   *web.Server
	insights *insight.Client
	sink     audio.Sink

	// newVideo opens the capture device; swappable in tests.
	newVideo func() (capture.Source, error)

	mu     sync.Mutex
	sess   *session.Session
	cancel context.CancelFunc
	done   chan struct{}
}

func newEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger, server *web.Server, insights *insight.Client) *engine {
	e := &engine{
		ctx:      ctx,
		cfg:      cfg,
		log:      logger,
		server:   server,
		insights: insights,
		sink:     newSink(cfg.Audio, logger),
	}
	e.newVideo = func() (capture.Source, error) {
		return capture.Open(e.cfg.Capture, e.log)
	}
	return e
}

// regenerateField builds the particle field and publishes it to the
// dashboard. Production uses a time-seeded source; every run gets its own
// galaxy.
func (e *engine) regenerateField() error {
	field, err := galaxy.Generate(e.cfg.Galaxy, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		return err
	}
	e.server.SetField(field)
	e.log.Info("particle field generated", "count", field.Count)
	return nil
}

// start opens the devices and launches a session run.
func (e *engine) start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess != nil {
		return ErrAlreadyRunning
	}

	video, err := e.newVideo()
	if err != nil {
		return fmt.Errorf("open capture device: %w", err)
	}

	det, err := e.newDetector()
	if err != nil {
		video.Close()
		return fmt.Errorf("open detector: %w", err)
	}

	synth := audio.NewSynthesizer(e.cfg.Audio, e.sink, e.log, rand.New(rand.NewSource(time.Now().UnixNano())))
	if enc, err := audio.NewOpusEncoder(e.cfg.Audio); err != nil {
		e.log.Warn("opus monitor disabled", "error", err)
	} else {
		synth.SetTap(func(chunk audio.Chunk) {
			pkt, err := enc.Encode(chunk)
			if err != nil {
				return
			}
			e.server.BroadcastAudio(pkt)
		})
	}

	sess := session.New(e.cfg.Session, session.Deps{
		Video:    video,
		Detector: det,
		Synth:    synth,
		Animator: galaxy.NewAnimator(e.cfg.Animator),
		Motion:   e.cfg.Motion,
		Logger:   e.log,
		OnFrame:  e.server.BroadcastFrame,
	})

	runCtx, cancel := context.WithCancel(e.ctx)
	done := make(chan struct{})
	go func() {
		sess.Run(runCtx)
		close(done)
	}()

	e.sess = sess
	e.cancel = cancel
	e.done = done
	e.log.Info("session started")
	return nil
}

// stop cancels the run, waits for teardown, and closes with a reflection.
func (e *engine) stop() (web.StopResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.sess == nil {
		return web.StopResult{}, ErrNotRunning
	}

	e.cancel()
	<-e.done

	summary := e.sess.Summary()
	e.sess = nil
	e.cancel = nil
	e.done = nil

	insightCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	ins := e.insights.GenerateOrFallback(insightCtx, insight.Request{
		AverageIntensity: summary.AverageIntensity,
		PeakIntensity:    summary.PeakIntensity,
		DurationSeconds:  summary.DurationSeconds,
	})

	e.log.Info("session ended",
		"session_id", summary.SessionID,
		"average", summary.AverageIntensity,
		"peak", summary.PeakIntensity,
		"duration_s", summary.DurationSeconds,
	)
	return web.StopResult{Summary: summary, Insight: ins}, nil
}

func (e *engine) status() (bool, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return false, 0
	}
	return true, e.sess.Intensity()
}

func (e *engine) tuning() motion.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.Motion
}

// applyTuning validates and applies new feel constants, both to the saved
// configuration and to the running session.
func (e *engine) applyTuning(m motion.Config) error {
	if err := m.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg.Motion = m
	if e.sess != nil {
		e.sess.ApplyTuning(m)
	}
	return nil
}

// newDetector builds the configured landmark backend.
func (e *engine) newDetector() (landmark.Detector, error) {
	switch e.cfg.Landmark.Backend {
	case "onnx":
		return landmark.NewONNX(e.cfg.Landmark)
	case "sidecar":
		return landmark.NewSidecar(e.cfg.Landmark)
	case "mock":
		return landmark.NewMockDetector(nil), nil
	default:
		return nil, fmt.Errorf("unknown landmark backend %q", e.cfg.Landmark.Backend)
	}
}

// newSink builds the configured audio output. Called once per process:
// the speaker sink wraps a hardware context that cannot be recreated.
func newSink(cfg audio.Config, logger *slog.Logger) audio.Sink {
	if cfg.Backend == audio.BackendMock {
		return audio.NewMockSink(cfg, logger)
	}
	return audio.NewOtoSink(cfg, logger)
}
