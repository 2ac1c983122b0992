package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Summary is the read-once result of a session, handed to the insight
// collaborator. Values are passed through unrounded; presentation is the
// caller's concern.
type Summary struct {
	SessionID        string  `json:"session_id"`
	AverageIntensity float64 `json:"average_intensity"`
	PeakIntensity    float64 `json:"peak_intensity"`
	DurationSeconds  float64 `json:"duration_seconds"`
	SampleCount      int     `json:"sample_count"`
}

// Stats accumulates the running average and peak of the smoothed
// intensity across a session. Samples at or below the deadband are
// ignored as near-zero noise.
type Stats struct {
	mu       sync.Mutex
	deadband float64
	sum      float64
	count    int
	peak     float64
	start    time.Time
	id       string

	now func() time.Time
}

// NewStats creates an accumulator with the given deadband.
func NewStats(deadband float64) *Stats {
	return &Stats{
		deadband: deadband,
		now:      time.Now,
	}
}

// Start resets all counters, assigns a fresh session ID and records the
// start time.
func (s *Stats) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = uuid.NewString()
	s.sum = 0
	s.count = 0
	s.peak = 0
	s.start = s.now()
}

// Record folds one smoothed-intensity sample into the running totals.
func (s *Stats) Record(intensity float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if intensity <= s.deadband {
		return
	}
	s.sum += intensity
	s.count++
	if intensity > s.peak {
		s.peak = intensity
	}
}

// SetDeadband changes the noise floor, for live tuning.
func (s *Stats) SetDeadband(deadband float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadband = deadband
}

// Finalize returns the session summary. A session with no qualifying
// samples reports a zero average.
func (s *Stats) Finalize() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	avg := 0.0
	if s.count > 0 {
		avg = s.sum / float64(s.count)
	}
	return Summary{
		SessionID:        s.id,
		AverageIntensity: avg,
		PeakIntensity:    s.peak,
		DurationSeconds:  s.now().Sub(s.start).Seconds(),
		SampleCount:      s.count,
	}
}
