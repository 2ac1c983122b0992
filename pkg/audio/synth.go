package audio

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"
)

// Synthesizer owns the wind audio graph: looped noise source -> lowpass
// filter -> gain stage -> sink. Update maps smoothed intensity to filter
// cutoff and gain; both parameters glide exponentially toward their
// targets so transitions never click.
//
// Lifecycle: created -> initialized (Init) -> stopped (Stop). Init and
// Stop are idempotent, and every call before a successful Init is a
// no-op, so a denied output device degrades to silence rather than an
// error state.
type Synthesizer struct {
	cfg    Config
	logger *slog.Logger
	sink   Sink

	noise []float64
	pos   int

	mu           sync.Mutex
	initialized  bool
	gain         float64
	cutoff       float64
	targetGain   float64
	targetCutoff float64
	filter       *LowPass
	tap          func(Chunk)

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSynthesizer creates a synthesizer writing to sink. The noise buffer
// is rendered eagerly from rnd; pass a seeded source for deterministic
// output, or nil for a time-seeded one.
func NewSynthesizer(cfg Config, sink Sink, logger *slog.Logger, rnd *rand.Rand) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	n := int(cfg.NoiseDuration.Seconds() * float64(cfg.SampleRate))
	s := &Synthesizer{
		cfg:          cfg,
		logger:       logger,
		sink:         sink,
		noise:        GenerateNoise(n, rnd),
		cutoff:       cfg.MinCutoffHz,
		targetCutoff: cfg.MinCutoffHz,
		filter:       NewLowPass(float64(cfg.SampleRate), cfg.MinCutoffHz),
	}
	return s
}

// SetTap registers a callback receiving every rendered chunk, e.g. for
// the opus monitoring stream. Pass nil to remove.
func (s *Synthesizer) SetTap(fn func(Chunk)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tap = fn
}

// Init starts the sink and the render loop. Idempotent: a second call on
// a running synthesizer is a no-op. A sink failure is returned to the
// caller and leaves the synthesizer safely uninitialized.
func (s *Synthesizer) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	if err := s.sink.Start(ctx); err != nil {
		return fmt.Errorf("audio: init: %w", err)
	}

	s.gain = 0
	s.targetGain = 0
	s.cutoff = s.cfg.MinCutoffHz
	s.targetCutoff = s.cfg.MinCutoffHz
	s.filter.SetCutoff(s.cfg.MinCutoffHz)
	s.filter.Reset()
	s.pos = 0

	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.initialized = true

	go s.renderLoop(loopCtx)

	s.logger.Info("audio synthesizer started",
		"sink", s.sink.Name(),
		"sample_rate", s.cfg.SampleRate,
		"buffer", s.cfg.BufferDuration,
		"noise", s.cfg.NoiseDuration,
	)
	return nil
}

// Resume restarts a suspended output. No-op before Init.
func (s *Synthesizer) Resume() error {
	s.mu.Lock()
	initialized := s.initialized
	s.mu.Unlock()
	if !initialized {
		return nil
	}
	return s.sink.Resume()
}

// Update retargets gain and cutoff from the smoothed intensity. Callable
// every render tick; a no-op before Init.
func (s *Synthesizer) Update(intensity float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	if intensity < 0 {
		intensity = 0
	}

	g := intensity * s.cfg.GainScale
	if g > s.cfg.MaxGain {
		g = s.cfg.MaxGain
	}
	s.targetGain = g
	s.targetCutoff = s.cfg.MinCutoffHz + intensity*s.cfg.CutoffRangeHz
}

// Stop halts rendering and playback and marks the synthesizer
// uninitialized. Safe to call at any point, including before Init.
func (s *Synthesizer) Stop() error {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return nil
	}
	s.initialized = false
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done

	s.logger.Info("audio synthesizer stopped")
	return s.sink.Stop()
}

// Close stops the synthesizer and releases the sink for good.
func (s *Synthesizer) Close() error {
	if err := s.Stop(); err != nil {
		return err
	}
	return s.sink.Close()
}

// Initialized reports whether the audio graph is running.
func (s *Synthesizer) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Params returns the current smoothed gain and cutoff, for status
// reporting and tests.
func (s *Synthesizer) Params() (gain, cutoffHz float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gain, s.cutoff
}

func (s *Synthesizer) renderLoop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.cfg.BufferDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			chunk, tap := s.renderChunk(s.cfg.BufferSize())
			if err := s.sink.Write(ctx, chunk); err != nil {
				s.logger.Debug("sink write failed", "error", err)
			}
			if tap != nil {
				tap(chunk)
			}
		}
	}
}

// renderChunk advances the audio graph by n frames. Gain and cutoff each
// move a per-sample fraction toward their targets, derived from the
// configured time constants.
func (s *Synthesizer) renderChunk(n int) (Chunk, func(Chunk)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fs := float64(s.cfg.SampleRate)
	gainCoef := 1 - math.Exp(-1/(s.cfg.GainTau.Seconds()*fs))
	cutoffCoef := 1 - math.Exp(-1/(s.cfg.CutoffTau.Seconds()*fs))

	samples := make([]int16, n*s.cfg.Channels)
	for i := 0; i < n; i++ {
		x := s.noise[s.pos]
		s.pos++
		if s.pos == len(s.noise) {
			s.pos = 0
		}

		s.gain += (s.targetGain - s.gain) * gainCoef
		s.cutoff += (s.targetCutoff - s.cutoff) * cutoffCoef
		s.filter.SetCutoff(s.cutoff)

		y := s.filter.Process(x) * s.gain
		if y > 1 {
			y = 1
		} else if y < -1 {
			y = -1
		}
		v := int16(y * 32767)
		for ch := 0; ch < s.cfg.Channels; ch++ {
			samples[i*s.cfg.Channels+ch] = v
		}
	}

	return Chunk{
		Samples:    samples,
		SampleRate: s.cfg.SampleRate,
		Channels:   s.cfg.Channels,
	}, s.tap
}
