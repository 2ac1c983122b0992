package landmark

import (
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Model input geometry for the MediaPipe hand-landmark ONNX export.
const (
	onnxInputSize     = 224
	onnxLandmarkCount = 21
)

// ONNXDetector runs a hand-landmark model locally through OpenCV's DNN
// module. One inference at a time; the net is not reentrant.
type ONNXDetector struct {
	net gocv.Net
	cfg Config
	mu  sync.Mutex
}

// NewONNX loads the hand-landmark model from cfg.ModelPath.
func NewONNX(cfg Config) (*ONNXDetector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("landmark: model file not found: %s", cfg.ModelPath)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("landmark: failed to load model %s", cfg.ModelPath)
	}

	return &ONNXDetector{net: net, cfg: cfg}, nil
}

// Detect runs the model on a JPEG frame. The model emits 21 landmarks in
// input-pixel coordinates plus a hand-presence score; landmarks are
// normalized back to [0,1] image coordinates before returning.
func (d *ONNXDetector) Detect(jpeg []byte) ([]Hand, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	capturedAt := time.Now()

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("landmark: decode image: %w", err)
	}
	defer img.Close()
	if img.Empty() {
		return nil, fmt.Errorf("landmark: empty image")
	}

	blob := gocv.BlobFromImage(img,
		1.0/255.0,
		image.Pt(onnxInputSize, onnxInputSize),
		gocv.NewScalar(0, 0, 0, 0),
		true,  // swap R and B
		false, // no crop
	)
	defer blob.Close()

	d.net.SetInput(blob, "")
	outputs := d.net.ForwardLayers([]string{"landmarks", "score"})
	defer func() {
		for _, o := range outputs {
			o.Close()
		}
	}()
	if len(outputs) < 2 {
		return nil, fmt.Errorf("landmark: model produced %d outputs, want 2", len(outputs))
	}

	score := float64(outputs[1].GetFloatAt(0, 0))
	if score < d.cfg.MinScore {
		return nil, nil
	}

	// Output 0 is 21 xyz triples in input-pixel coordinates; z is a
	// relative depth we do not use.
	points := make([]Point, 0, onnxLandmarkCount)
	for i := 0; i < onnxLandmarkCount; i++ {
		points = append(points, Point{
			X: float64(outputs[0].GetFloatAt(0, i*3)) / onnxInputSize,
			Y: float64(outputs[0].GetFloatAt(0, i*3+1)) / onnxInputSize,
		})
	}

	return []Hand{{
		Points:     points,
		Score:      score,
		CapturedAt: capturedAt,
	}}, nil
}

// Close releases the network.
func (d *ONNXDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}

var _ Detector = (*ONNXDetector)(nil)
