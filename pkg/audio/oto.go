package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hajimehoshi/oto/v2"
)

// OtoSink plays audio on the local output device via oto. The player
// pulls from an internal PCM buffer; underruns produce silence rather
// than stalling the device.
type OtoSink struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	otoCtx  *oto.Context
	ready   chan struct{}
	player  oto.Player
	buf     *pcmBuffer
	running bool
	closed  bool
}

// NewOtoSink creates a speaker sink. The output device is not touched
// until Start.
func NewOtoSink(cfg Config, logger *slog.Logger) *OtoSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &OtoSink{
		cfg:    cfg,
		logger: logger,
		// Cap buffered audio at ~200ms so the speaker never lags far
		// behind the intensity signal.
		buf: newPCMBuffer(cfg.SampleRate * cfg.Channels * 2 / 5),
	}
}

// Start acquires the output device and begins playback.
func (s *OtoSink) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	if s.running {
		return nil
	}

	if s.otoCtx == nil {
		otoCtx, ready, err := oto.NewContext(s.cfg.SampleRate, s.cfg.Channels, 2)
		if err != nil {
			return fmt.Errorf("audio: open output device: %w", err)
		}
		s.otoCtx = otoCtx
		s.ready = ready
		s.player = otoCtx.NewPlayer(s.buf)
	}
	s.player.Play()
	s.running = true

	s.logger.Info("speaker sink started",
		"sample_rate", s.cfg.SampleRate,
		"channels", s.cfg.Channels,
	)
	return nil
}

// Write queues PCM for the player.
func (s *OtoSink) Write(ctx context.Context, chunk Chunk) error {
	s.mu.Lock()
	running := s.running
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return ErrSinkClosed
	}
	if !running {
		return nil
	}
	s.buf.Write(chunk.Bytes())
	return nil
}

// Resume restarts a player the platform has paused. Blocks only if the
// hardware context is still warming up.
func (s *OtoSink) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	if s.player == nil {
		return nil
	}
	if s.ready != nil {
		<-s.ready
		s.ready = nil
	}
	if !s.player.IsPlaying() {
		s.player.Play()
	}
	return nil
}

// Stop pauses playback. The sink can be started again.
func (s *OtoSink) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	if s.player != nil {
		s.player.Pause()
	}
	s.buf.Clear()
	return nil
}

// Config returns the audio configuration.
func (s *OtoSink) Config() Config {
	return s.cfg
}

// Name returns "speaker".
func (s *OtoSink) Name() string {
	return "speaker"
}

// Close releases the player. The oto context itself cannot be closed and
// lives for the process.
func (s *OtoSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.running = false
	if s.player != nil {
		s.player.Close()
		s.player = nil
	}
	return nil
}

var _ Sink = (*OtoSink)(nil)

// pcmBuffer is a bounded FIFO of PCM bytes. Reads past the buffered data
// return silence so the audio device never starves; writes beyond the cap
// drop the oldest audio so playback never drifts behind the signal.
type pcmBuffer struct {
	mu   sync.Mutex
	data []byte
	max  int
}

func newPCMBuffer(max int) *pcmBuffer {
	return &pcmBuffer{max: max}
}

func (b *pcmBuffer) Write(p []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append(b.data, p...)
	if over := len(b.data) - b.max; over > 0 {
		b.data = b.data[over:]
	}
}

// Read implements io.Reader for the oto player.
func (b *pcmBuffer) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := copy(p, b.data)
	b.data = b.data[n:]
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

func (b *pcmBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = nil
}
