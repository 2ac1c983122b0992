// Package web serves the installation dashboard: a REST surface for
// session control and tuning, plus websocket streams carrying per-frame
// state and the opus audio monitor.
package web

import (
	"log/slog"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/stillpoint/nebula/pkg/galaxy"
	"github.com/stillpoint/nebula/pkg/hub"
	"github.com/stillpoint/nebula/pkg/insight"
	"github.com/stillpoint/nebula/pkg/motion"
	"github.com/stillpoint/nebula/pkg/session"
)

// Config holds the server address and the static asset directory.
type Config struct {
	Addr      string `toml:"addr"`
	StaticDir string `toml:"static_dir"`
}

// DefaultConfig serves on :8080 with assets from ./web.
func DefaultConfig() Config {
	return Config{
		Addr:      ":8080",
		StaticDir: "./web",
	}
}

// Status is the dashboard's view of the engine.
type Status struct {
	Running      bool    `json:"running"`
	Intensity    float64 `json:"intensity"`
	FrameClients int     `json:"frame_clients"`
	AudioClients int     `json:"audio_clients"`
}

// StopResult is returned from a session stop: the raw numbers plus the
// generated (or fallback) reflection.
type StopResult struct {
	Summary session.Summary `json:"summary"`
	Insight insight.Insight `json:"insight"`
}

// Server is the dashboard server. The On* callbacks connect it to the
// engine; unset callbacks make the corresponding endpoint report 503.
type Server struct {
	app *fiber.App
	cfg Config
	log *slog.Logger

	frameHub *hub.Hub
	audioHub *hub.Hub

	fieldMu sync.RWMutex
	field   *galaxy.Field

	// OnSessionStart starts a session run. Called from POST /api/session/start.
	OnSessionStart func() error

	// OnSessionStop ends the run and returns the summary and insight.
	OnSessionStop func() (StopResult, error)

	// OnStatus reports whether a session is running and its intensity.
	OnStatus func() (running bool, intensity float64)

	// OnTuningGet and OnTuningPut expose the live motion feel constants.
	OnTuningGet func() motion.Config
	OnTuningPut func(motion.Config) error
}

// NewServer builds the fiber app and its routes.
func NewServer(cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		log:      logger,
		frameHub: hub.New("frames", logger),
		audioHub: hub.New("audio", logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Nebula Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local renderer development.
	app.Use(cors.New())

	app.Static("/", cfg.StaticDir)

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/field", s.handleField)
	api.Get("/tuning", s.handleGetTuning)
	api.Put("/tuning", s.handlePutTuning)
	api.Post("/session/start", s.handleSessionStart)
	api.Post("/session/stop", s.handleSessionStop)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/frames", websocket.New(s.handleFramesWS))
	app.Get("/ws/audio", websocket.New(s.handleAudioWS))

	s.app = app
	return s
}

// Start runs the hubs and blocks serving HTTP.
func (s *Server) Start() error {
	go s.frameHub.Run()
	go s.audioHub.Run()
	s.log.Info("dashboard listening", "addr", s.cfg.Addr)
	return s.app.Listen(s.cfg.Addr)
}

// StartAsync serves in a goroutine, logging any listen failure.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.log.Error("dashboard server stopped", "error", err)
		}
	}()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// SetField publishes the particle field served by GET /api/field. Called
// once per session, after generation.
func (s *Server) SetField(f *galaxy.Field) {
	s.fieldMu.Lock()
	s.field = f
	s.fieldMu.Unlock()
}

// BroadcastFrame fans the per-tick state out to every frame subscriber.
// Wire it to the session's OnFrame hook.
func (s *Server) BroadcastFrame(f session.FrameState) {
	if s.frameHub.ClientCount() == 0 {
		return
	}
	if err := s.frameHub.BroadcastJSON(f); err != nil {
		s.log.Warn("frame broadcast failed", "error", err)
	}
}

// BroadcastAudio fans an encoded opus packet out to audio monitors.
func (s *Server) BroadcastAudio(packet []byte) {
	if s.audioHub.ClientCount() == 0 {
		return
	}
	s.audioHub.BroadcastBinary(packet)
}

// handleFramesWS attaches a renderer to the frame-state stream.
func (s *Server) handleFramesWS(c *websocket.Conn) {
	hub.NewClient(s.frameHub, c).Run()
}

// handleAudioWS attaches a listener to the opus monitor stream.
func (s *Server) handleAudioWS(c *websocket.Conn) {
	hub.NewClient(s.audioHub, c).Run()
}
