// Package insight asks a language model for a short reflective note on a
// finished session. The call is best-effort: any failure is absorbed and
// the caller shows Fallback instead.
package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/stillpoint/nebula/internal/httpc"
)

// Sentinel errors for insight generation.
var (
	ErrNoAPIKey   = errors.New("insight: no API key configured")
	ErrEmptyReply = errors.New("insight: model returned no usable reply")
)

// Fallback is shown whenever the collaborator cannot be reached or its
// reply cannot be parsed. Never surface those failures to the visitor.
var Fallback = Insight{
	Title:   "A Moment of Stillness",
	Insight: "The connection drifted away, but your movement spoke for itself.",
}

// Request carries the session measurements the model reflects on.
// Intensities are on the 0-1 scale the stats accumulator reports.
type Request struct {
	AverageIntensity float64 `json:"averageIntensity"`
	PeakIntensity    float64 `json:"peakIntensity"`
	DurationSeconds  float64 `json:"durationSeconds"`
}

// Insight is the model's reflection on a session.
type Insight struct {
	Title   string `json:"title"`
	Insight string `json:"insight"`
}

// Config configures the Gemini-backed client.
type Config struct {
	APIKey  string        `toml:"-"`
	Model   string        `toml:"model"`
	BaseURL string        `toml:"base_url"`
	Timeout time.Duration `toml:"timeout"`
}

// DefaultConfig returns the production endpoint and model.
func DefaultConfig() Config {
	return Config{
		Model:   "gemini-2.0-flash",
		BaseURL: "https://generativelanguage.googleapis.com",
		Timeout: 10 * time.Second,
	}
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

// NewClient creates an insight client. A zero Model or BaseURL falls back
// to the defaults.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	def := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: httpc.NewClient(cfg.Timeout),
		log:  logger,
	}
}

// Generate asks the model for a title and a one-sentence reflection.
func (c *Client) Generate(ctx context.Context, req Request) (Insight, error) {
	if c.cfg.APIKey == "" {
		return Insight{}, ErrNoAPIKey
	}

	prompt := fmt.Sprintf(`A visitor just finished a movement session in an interactive installation.
Their hand motion drove wind-like sound and a spiral particle field.

Session measurements:
- average motion intensity: %.2f (scale 0 to 1)
- peak motion intensity: %.2f (scale 0 to 1)
- duration: %.0f seconds

Write a short poetic reflection on their session.

Respond in exactly this format:
TITLE: [3-6 word title in Title Case]
INSIGHT: [one or two warm sentences, no more than 40 words]`,
		req.AverageIntensity, req.PeakIntensity, req.DurationSeconds)

	reply, err := c.call(ctx, prompt)
	if err != nil {
		return Insight{}, err
	}

	ins, ok := parseReply(reply)
	if !ok {
		return Insight{}, fmt.Errorf("%w: %q", ErrEmptyReply, truncate(reply, 120))
	}
	return ins, nil
}

// GenerateOrFallback never fails: any error is logged and replaced with
// Fallback so the session end screen always has something to show.
func (c *Client) GenerateOrFallback(ctx context.Context, req Request) Insight {
	ins, err := c.Generate(ctx, req)
	if err != nil {
		c.log.Warn("insight generation failed, using fallback", "error", err)
		return Fallback
	}
	return ins
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (c *Client) call(ctx context.Context, prompt string) (string, error) {
	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature":     0.7,
			"maxOutputTokens": 120,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model, c.cfg.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("insight request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("insight API status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if parsed.Error.Message != "" {
		return "", fmt.Errorf("insight API error: %s", parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyReply
	}
	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}

// parseReply extracts the TITLE/INSIGHT lines from the model's reply.
func parseReply(reply string) (Insight, bool) {
	var ins Insight
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "title:"):
			ins.Title = cleanLine(line[len("title:"):])
		case strings.HasPrefix(lower, "insight:"):
			ins.Insight = cleanLine(line[len("insight:"):])
		}
	}
	return ins, ins.Title != "" && ins.Insight != ""
}

func cleanLine(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
