package insight

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func geminiReply(text string) string {
	body := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]interface{}{
						{"text": text},
					},
				},
			},
		},
	}
	raw, _ := json.Marshal(body)
	return string(raw)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = srv.URL
	return NewClient(cfg, nil)
}

func TestGenerate_ParsesTitleAndInsight(t *testing.T) {
	var gotPath string
	var gotBody []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		io.WriteString(w, geminiReply("TITLE: Waves of Quiet Motion\nINSIGHT: Your hands moved like wind through branches."))
	})

	ins, err := c.Generate(context.Background(), Request{
		AverageIntensity: 0.4,
		PeakIntensity:    0.9,
		DurationSeconds:  30,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if ins.Title != "Waves of Quiet Motion" {
		t.Errorf("title = %q", ins.Title)
	}
	if ins.Insight != "Your hands moved like wind through branches." {
		t.Errorf("insight = %q", ins.Insight)
	}

	if !strings.Contains(gotPath, "gemini-2.0-flash:generateContent") {
		t.Errorf("request path = %q, want generateContent for the default model", gotPath)
	}
	for _, want := range []string{"0.40", "0.90", "30 seconds"} {
		if !strings.Contains(string(gotBody), want) {
			t.Errorf("prompt is missing %q", want)
		}
	}
}

func TestGenerate_NoAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	c := NewClient(cfg, nil)
	if _, err := c.Generate(context.Background(), Request{}); err != ErrNoAPIKey {
		t.Errorf("err = %v, want ErrNoAPIKey", err)
	}
}

func TestGenerateOrFallback_NeverErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, "{not json")
			},
		},
		{
			name: "reply without expected lines",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, geminiReply("I cannot help with that."))
			},
		},
		{
			name: "empty candidates",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"candidates":[]}`)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			ins := c.GenerateOrFallback(context.Background(), Request{})
			if ins != Fallback {
				t.Errorf("got %+v, want the fixed fallback", ins)
			}
		})
	}
}

func TestGenerateOrFallback_PassesThroughSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, geminiReply("TITLE: Gentle Arcs\nINSIGHT: A calm session."))
	})
	ins := c.GenerateOrFallback(context.Background(), Request{AverageIntensity: 0.2})
	if ins.Title != "Gentle Arcs" || ins.Insight != "A calm session." {
		t.Errorf("got %+v", ins)
	}
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  Insight
		ok    bool
	}{
		{
			name:  "quoted values",
			reply: "TITLE: \"Spiral Dance\"\nINSIGHT: 'You kept a steady rhythm.'",
			want:  Insight{Title: "Spiral Dance", Insight: "You kept a steady rhythm."},
			ok:    true,
		},
		{
			name:  "case insensitive prefixes",
			reply: "title: Slow Currents\ninsight: Barely a ripple, and that was enough.",
			want:  Insight{Title: "Slow Currents", Insight: "Barely a ripple, and that was enough."},
			ok:    true,
		},
		{
			name:  "missing insight line",
			reply: "TITLE: Half an Answer",
			ok:    false,
		},
		{
			name:  "empty reply",
			reply: "",
			ok:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseReply(tt.reply)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
