package landmark

import (
	"sync"
	"time"
)

// MockDetector replays a scripted sequence of detection results, one per
// Detect call. After the script runs out it keeps returning the final
// entry, so a test can hold a hand still or keep it absent indefinitely.
type MockDetector struct {
	mu     sync.Mutex
	script [][]Hand
	pos    int
	calls  int
	closed bool
}

// NewMockDetector creates a detector replaying the given results. A nil
// entry means "no hand this frame".
func NewMockDetector(script ...[]Hand) *MockDetector {
	return &MockDetector{script: script}
}

// HandAt builds a single-hand result with the wrist at (x, y).
func HandAt(x, y float64, at time.Time) []Hand {
	return []Hand{{
		Points:     []Point{{X: x, Y: y}},
		Score:      1,
		CapturedAt: at,
	}}
}

// Detect returns the next scripted result.
func (m *MockDetector) Detect(jpeg []byte) ([]Hand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrDetectorClosed
	}
	m.calls++
	if len(m.script) == 0 {
		return nil, nil
	}
	hands := m.script[m.pos]
	if m.pos < len(m.script)-1 {
		m.pos++
	}
	return hands, nil
}

// Calls returns how many times Detect has run.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var _ Detector = (*MockDetector)(nil)
