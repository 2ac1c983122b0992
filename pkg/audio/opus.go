package audio

import (
	"fmt"

	opus "gopkg.in/hraban/opus.v2"
)

// OpusEncoder compresses rendered chunks for the websocket monitoring
// stream. Opus accepts a fixed set of frame durations; the default 20ms
// buffer lines up with a valid frame.
type OpusEncoder struct {
	enc        *opus.Encoder
	channels   int
	sampleRate int
	buf        []byte
}

// NewOpusEncoder creates an encoder matching the synthesizer output.
func NewOpusEncoder(cfg Config) (*OpusEncoder, error) {
	switch cfg.SampleRate {
	case 8000, 12000, 16000, 24000, 48000:
	default:
		return nil, fmt.Errorf("audio: opus does not support %d Hz", cfg.SampleRate)
	}

	enc, err := opus.NewEncoder(cfg.SampleRate, cfg.Channels, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("audio: create opus encoder: %w", err)
	}

	return &OpusEncoder{
		enc:        enc,
		channels:   cfg.Channels,
		sampleRate: cfg.SampleRate,
		buf:        make([]byte, 4000),
	}, nil
}

// Encode compresses one chunk into an opus packet. The chunk must span a
// valid opus frame duration (2.5, 5, 10, 20, 40 or 60 ms).
func (e *OpusEncoder) Encode(chunk Chunk) ([]byte, error) {
	frames := len(chunk.Samples) / e.channels
	valid := false
	for _, ms := range []int{25, 50, 100, 200, 400, 600} {
		if frames*10000 == e.sampleRate*ms {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("audio: %d frames is not a valid opus frame size at %d Hz", frames, e.sampleRate)
	}

	n, err := e.enc.Encode(chunk.Samples, e.buf)
	if err != nil {
		return nil, fmt.Errorf("audio: opus encode: %w", err)
	}
	packet := make([]byte, n)
	copy(packet, e.buf[:n])
	return packet, nil
}
