package landmark

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sidecarDialTimeout  = 5 * time.Second
	sidecarWriteTimeout = 2 * time.Second
	sidecarReadTimeout  = 2 * time.Second
)

// sidecarRequest is one frame submitted for detection.
type sidecarRequest struct {
	Frame       string `json:"frame"` // base64 JPEG
	TimestampMS int64  `json:"timestamp_ms"`
}

// sidecarResponse is the detection result for one frame.
type sidecarResponse struct {
	Hands       []Hand `json:"hands"`
	TimestampMS int64  `json:"timestamp_ms"`
	Error       string `json:"error,omitempty"`
}

// SidecarDetector delegates detection to a MediaPipe sidecar process over
// a websocket. The exchange is lockstep: one frame out, one result back.
// A stalled or dead sidecar surfaces as a Detect error, which the session
// treats like a missed frame, never a fatal condition.
type SidecarDetector struct {
	cfg Config

	mu     sync.Mutex
	ws     *websocket.Conn
	closed bool
}

// NewSidecar connects to the sidecar at cfg.SidecarURL.
func NewSidecar(cfg Config) (*SidecarDetector, error) {
	dialer := websocket.Dialer{HandshakeTimeout: sidecarDialTimeout}
	ws, _, err := dialer.Dial(cfg.SidecarURL, nil)
	if err != nil {
		return nil, fmt.Errorf("landmark: connect sidecar %s: %w", cfg.SidecarURL, err)
	}
	return &SidecarDetector{cfg: cfg, ws: ws}, nil
}

// Detect ships the frame to the sidecar and waits for its result.
func (d *SidecarDetector) Detect(jpeg []byte) ([]Hand, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrDetectorClosed
	}

	capturedAt := time.Now()
	req := sidecarRequest{
		Frame:       base64.StdEncoding.EncodeToString(jpeg),
		TimestampMS: capturedAt.UnixMilli(),
	}

	d.ws.SetWriteDeadline(time.Now().Add(sidecarWriteTimeout))
	if err := d.ws.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("landmark: send frame: %w", err)
	}

	d.ws.SetReadDeadline(time.Now().Add(sidecarReadTimeout))
	var resp sidecarResponse
	if err := d.ws.ReadJSON(&resp); err != nil {
		return nil, fmt.Errorf("landmark: read result: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("landmark: sidecar: %s", resp.Error)
	}

	// The sidecar echoes the capture timestamp so velocity is measured
	// against capture time, not result-arrival time.
	at := capturedAt
	if resp.TimestampMS > 0 {
		at = time.UnixMilli(resp.TimestampMS)
	}

	hands := resp.Hands[:0]
	for _, h := range resp.Hands {
		if h.Score < d.cfg.MinScore {
			continue
		}
		h.CapturedAt = at
		hands = append(hands, h)
	}
	return hands, nil
}

// Close shuts down the websocket.
func (d *SidecarDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	d.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(sidecarWriteTimeout))
	return d.ws.Close()
}

var _ Detector = (*SidecarDetector)(nil)
