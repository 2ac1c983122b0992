package motion

import (
	"math"
	"sync/atomic"
)

// TargetCell is a single-slot "latest target intensity" shared between the
// capture loop (writer) and the render loop (reader). The writer never
// blocks; the reader always sees the most recent value. A queue here would
// only add latency.
type TargetCell struct {
	bits atomic.Uint64
}

// Store publishes a new target intensity.
func (c *TargetCell) Store(v float64) {
	c.bits.Store(math.Float64bits(v))
}

// Load returns the most recently published target intensity.
func (c *TargetCell) Load() float64 {
	return math.Float64frombits(c.bits.Load())
}
