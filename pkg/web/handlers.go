package web

import (
	"encoding/base64"
	"encoding/binary"
	"math"

	"github.com/gofiber/fiber/v2"

	"github.com/stillpoint/nebula/pkg/motion"
)

// handleStatus reports the engine state.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	st := Status{
		FrameClients: s.frameHub.ClientCount(),
		AudioClients: s.audioHub.ClientCount(),
	}
	if s.OnStatus != nil {
		st.Running, st.Intensity = s.OnStatus()
	}
	return c.JSON(st)
}

// fieldResponse carries the particle buffers as base64 little-endian
// float32 so renderers can drop them straight into typed arrays.
type fieldResponse struct {
	Count     int    `json:"count"`
	Positions string `json:"positions"`
	Colors    string `json:"colors"`
}

func (s *Server) handleField(c *fiber.Ctx) error {
	s.fieldMu.RLock()
	field := s.field
	s.fieldMu.RUnlock()

	if field == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no field generated yet",
		})
	}
	return c.JSON(fieldResponse{
		Count:     field.Count,
		Positions: encodeFloat32s(field.Positions),
		Colors:    encodeFloat32s(field.Colors),
	})
}

func (s *Server) handleGetTuning(c *fiber.Ctx) error {
	if s.OnTuningGet == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "tuning not wired",
		})
	}
	return c.JSON(s.OnTuningGet())
}

func (s *Server) handlePutTuning(c *fiber.Ctx) error {
	if s.OnTuningPut == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "tuning not wired",
		})
	}

	var m motion.Config
	if err := c.BodyParser(&m); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err := s.OnTuningPut(m); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	s.log.Info("tuning updated via dashboard")
	return c.JSON(m)
}

func (s *Server) handleSessionStart(c *fiber.Ctx) error {
	if s.OnSessionStart == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "session control not wired",
		})
	}
	if err := s.OnSessionStart(); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"started": true})
}

func (s *Server) handleSessionStop(c *fiber.Ctx) error {
	if s.OnSessionStop == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "session control not wired",
		})
	}
	result, err := s.OnSessionStop()
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(result)
}

// encodeFloat32s packs values as little-endian float32 and base64s them.
func encodeFloat32s(values []float32) string {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return base64.StdEncoding.EncodeToString(buf)
}
