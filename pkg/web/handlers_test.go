package web

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stillpoint/nebula/pkg/galaxy"
	"github.com/stillpoint/nebula/pkg/motion"
)

func newTestServer() *Server {
	cfg := DefaultConfig()
	cfg.StaticDir = "."
	return NewServer(cfg, nil)
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	resp.Body.Close()
}

func TestStatus(t *testing.T) {
	s := newTestServer()
	s.OnStatus = func() (bool, float64) { return true, 0.42 }

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if err != nil {
		t.Fatal(err)
	}
	var st Status
	decodeJSON(t, resp, &st)
	if !st.Running || st.Intensity != 0.42 {
		t.Errorf("status = %+v", st)
	}
	if st.FrameClients != 0 || st.AudioClients != 0 {
		t.Errorf("expected no clients, got %+v", st)
	}
}

func TestField_RoundTripsBuffers(t *testing.T) {
	s := newTestServer()

	p := galaxy.DefaultParams()
	p.Count = 100
	field, err := galaxy.Generate(p, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatal(err)
	}
	s.SetField(field)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/field", nil))
	if err != nil {
		t.Fatal(err)
	}
	var fr fieldResponse
	decodeJSON(t, resp, &fr)

	if fr.Count != 100 {
		t.Errorf("count = %d, want 100", fr.Count)
	}
	got := decodeFloat32s(t, fr.Positions)
	if len(got) != len(field.Positions) {
		t.Fatalf("positions length = %d, want %d", len(got), len(field.Positions))
	}
	for i := range got {
		if got[i] != field.Positions[i] {
			t.Fatalf("positions[%d] = %v, want %v", i, got[i], field.Positions[i])
		}
	}
}

func TestField_NotGenerated(t *testing.T) {
	s := newTestServer()
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/field", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestTuning_PutAppliesAndValidates(t *testing.T) {
	s := newTestServer()

	var applied motion.Config
	s.OnTuningGet = func() motion.Config { return motion.DefaultConfig() }
	s.OnTuningPut = func(m motion.Config) error {
		if err := m.Validate(); err != nil {
			return err
		}
		applied = m
		return nil
	}

	body, _ := json.Marshal(motion.Config{
		Sensitivity:  3.0,
		MaxIntensity: 1.5,
		LerpFactor:   0.2,
		Deadband:     0.05,
	})
	req := httptest.NewRequest(http.MethodPut, "/api/tuning", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if applied.Sensitivity != 3.0 || applied.LerpFactor != 0.2 {
		t.Errorf("applied = %+v", applied)
	}

	// Out-of-range tuning is rejected before it reaches the session.
	bad, _ := json.Marshal(motion.Config{LerpFactor: 5})
	req = httptest.NewRequest(http.MethodPut, "/api/tuning", bytes.NewReader(bad))
	req.Header.Set("Content-Type", "application/json")
	resp, err = s.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSessionLifecycleEndpoints(t *testing.T) {
	s := newTestServer()

	running := false
	s.OnSessionStart = func() error {
		if running {
			return errors.New("already running")
		}
		running = true
		return nil
	}
	s.OnSessionStop = func() (StopResult, error) {
		if !running {
			return StopResult{}, errors.New("not running")
		}
		running = false
		var r StopResult
		r.Summary.PeakIntensity = 0.9
		r.Insight.Title = "Quiet Spiral"
		return r, nil
	}

	resp, err := s.app.Test(httptest.NewRequest(http.MethodPost, "/api/session/start", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d", resp.StatusCode)
	}

	// A second start conflicts.
	resp, err = s.app.Test(httptest.NewRequest(http.MethodPost, "/api/session/start", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("double start status = %d, want 409", resp.StatusCode)
	}

	resp, err = s.app.Test(httptest.NewRequest(http.MethodPost, "/api/session/stop", nil))
	if err != nil {
		t.Fatal(err)
	}
	var result StopResult
	decodeJSON(t, resp, &result)
	if result.Summary.PeakIntensity != 0.9 || result.Insight.Title != "Quiet Spiral" {
		t.Errorf("stop result = %+v", result)
	}
}

func TestUnwiredEndpointsReportUnavailable(t *testing.T) {
	s := newTestServer()
	for _, tt := range []struct {
		method, path string
	}{
		{http.MethodGet, "/api/tuning"},
		{http.MethodPost, "/api/session/start"},
		{http.MethodPost, "/api/session/stop"},
	} {
		resp, err := s.app.Test(httptest.NewRequest(tt.method, tt.path, nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("%s %s status = %d, want 503", tt.method, tt.path, resp.StatusCode)
		}
	}
}

func decodeFloat32s(t *testing.T, encoded string) []float32 {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out
}
