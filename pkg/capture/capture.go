// Package capture grabs JPEG frames from the local webcam for the
// landmark detector.
package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gocv.io/x/gocv"
)

// ErrClosed is returned when capturing after Close.
var ErrClosed = errors.New("capture: device closed")

// Config holds webcam configuration.
type Config struct {
	// Device is the capture device index or path.
	Device int `toml:"device"`

	// Width and Height request a capture resolution; the driver may
	// choose the nearest supported mode.
	Width  int `toml:"width"`
	Height int `toml:"height"`

	// JPEGQuality for encoded frames, 1-100.
	JPEGQuality int `toml:"jpeg_quality"`
}

// DefaultConfig returns defaults suited to landmark detection: detection
// models downscale anyway, so a modest resolution keeps latency low.
func DefaultConfig() Config {
	return Config{
		Device:      0,
		Width:       640,
		Height:      480,
		JPEGQuality: 80,
	}
}

// Source is anything that can produce JPEG frames. The session depends on
// this, not on the webcam, so tests can substitute a stub.
type Source interface {
	CaptureJPEG() ([]byte, error)
	Close() error
}

// Webcam captures frames from a local camera via OpenCV.
type Webcam struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	cam    *gocv.VideoCapture
	img    gocv.Mat
	closed bool
}

// Open acquires the camera device.
func Open(cfg Config, logger *slog.Logger) (*Webcam, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cam, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("capture: open device %d: %w", cfg.Device, err)
	}
	cam.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	cam.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))

	logger.Info("webcam opened",
		"device", cfg.Device,
		"width", cfg.Width,
		"height", cfg.Height,
	)

	return &Webcam{
		cfg:    cfg,
		logger: logger,
		cam:    cam,
		img:    gocv.NewMat(),
	}, nil
}

// CaptureJPEG grabs one frame and encodes it as JPEG.
func (w *Webcam) CaptureJPEG() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrClosed
	}
	if ok := w.cam.Read(&w.img); !ok || w.img.Empty() {
		return nil, fmt.Errorf("capture: failed to read frame from device %d", w.cfg.Device)
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, w.img,
		[]int{gocv.IMWriteJpegQuality, w.cfg.JPEGQuality})
	if err != nil {
		return nil, fmt.Errorf("capture: encode frame: %w", err)
	}
	defer buf.Close()

	jpeg := make([]byte, buf.Len())
	copy(jpeg, buf.GetBytes())
	return jpeg, nil
}

// Close releases the camera device.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	w.img.Close()
	if err := w.cam.Close(); err != nil {
		return fmt.Errorf("capture: close device: %w", err)
	}
	w.logger.Info("webcam released", "device", w.cfg.Device)
	return nil
}

var _ Source = (*Webcam)(nil)
