// Package landmark provides hand-landmark detection backends. The
// detector itself is a black box; this package defines the boundary and
// the implementations that cross it.
package landmark

import (
	"errors"
	"time"
)

// WristIndex is the anatomical index of the wrist point, the only
// landmark the motion pipeline consumes.
const WristIndex = 0

// Sentinel errors for detector backends.
var (
	// ErrDetectorClosed is returned when using a detector after Close.
	ErrDetectorClosed = errors.New("landmark: detector closed")
)

// Point is a normalized 2D keypoint, (0,0) top-left to (1,1) bottom-right.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Hand is one detected hand: its landmark points indexed by anatomical
// position, a confidence score, and the frame capture time.
type Hand struct {
	Points     []Point   `json:"points"`
	Score      float64   `json:"score"`
	CapturedAt time.Time `json:"-"`
}

// Wrist returns the wrist landmark.
func (h *Hand) Wrist() (Point, bool) {
	if len(h.Points) <= WristIndex {
		return Point{}, false
	}
	return h.Points[WristIndex], true
}

// Detector is the interface for hand-landmark detection backends.
type Detector interface {
	// Detect finds hands in the JPEG image. An empty slice means no hand
	// this frame; that is an ordinary outcome, not an error.
	Detect(jpeg []byte) ([]Hand, error)

	// Close releases resources.
	Close() error
}

// Config holds detector configuration.
type Config struct {
	// Backend selects the implementation: "onnx", "sidecar" or "mock".
	Backend string `toml:"backend"`

	// ModelPath is the ONNX hand-landmark model (onnx backend).
	ModelPath string `toml:"model_path"`

	// SidecarURL is the websocket endpoint of the MediaPipe sidecar
	// (sidecar backend).
	SidecarURL string `toml:"sidecar_url"`

	// MinScore is the minimum hand confidence to accept.
	MinScore float64 `toml:"min_score"`
}

// DefaultConfig returns production defaults for the ONNX backend.
func DefaultConfig() Config {
	return Config{
		Backend:    "onnx",
		ModelPath:  "models/hand_landmark.onnx",
		SidecarURL: "ws://127.0.0.1:9002/landmarks",
		MinScore:   0.5,
	}
}

// SelectBest picks the most confident hand from multiple detections.
func SelectBest(hands []Hand) *Hand {
	if len(hands) == 0 {
		return nil
	}
	best := &hands[0]
	for i := range hands[1:] {
		if hands[i+1].Score > best.Score {
			best = &hands[i+1]
		}
	}
	return best
}
