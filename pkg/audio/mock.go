package audio

import (
	"context"
	"log/slog"
	"sync"
)

// MockSink is an audio sink for testing. It discards audio but records
// every written chunk so tests can observe gain and cutoff ramps.
type MockSink struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	closed  bool
	paused  bool
	written []Chunk

	startErr error
}

// MockSinkOption configures a MockSink.
type MockSinkOption func(*MockSink)

// WithStartError makes Start fail, for exercising the audio-init failure
// path.
func WithStartError(err error) MockSinkOption {
	return func(m *MockSink) {
		m.startErr = err
	}
}

// NewMockSink creates a new mock audio sink.
func NewMockSink(cfg Config, logger *slog.Logger, opts ...MockSinkOption) *MockSink {
	if logger == nil {
		logger = slog.Default()
	}
	m := &MockSink{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins accepting audio.
func (m *MockSink) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrSinkClosed
	}
	if m.startErr != nil {
		return m.startErr
	}
	m.running = true
	m.paused = false
	return nil
}

// Write records the chunk.
func (m *MockSink) Write(ctx context.Context, chunk Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrSinkClosed
	}
	if !m.running {
		return nil
	}
	m.written = append(m.written, chunk)
	return nil
}

// Resume clears the simulated suspended state.
func (m *MockSink) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = false
	return nil
}

// Suspend simulates a platform autoplay suspension.
func (m *MockSink) Suspend() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
}

// Suspended reports whether the sink is in the simulated suspended state.
func (m *MockSink) Suspended() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Stop halts playback.
func (m *MockSink) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	return nil
}

// Config returns the audio configuration.
func (m *MockSink) Config() Config {
	return m.cfg
}

// Name returns "mock".
func (m *MockSink) Name() string {
	return "mock"
}

// Close releases the sink.
func (m *MockSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	m.closed = true
	return nil
}

// Running reports whether the sink is accepting audio.
func (m *MockSink) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Written returns a copy of all chunks written so far.
func (m *MockSink) Written() []Chunk {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Chunk, len(m.written))
	copy(out, m.written)
	return out
}

var _ Sink = (*MockSink)(nil)
