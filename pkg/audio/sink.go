package audio

import (
	"context"
	"errors"
	"io"
)

// ErrSinkClosed is returned when using a sink after Close.
var ErrSinkClosed = errors.New("audio: sink closed")

// Chunk is a block of rendered PCM16 audio.
type Chunk struct {
	// Samples contains interleaved PCM16 samples.
	Samples []int16

	// SampleRate is the sample rate of this chunk.
	SampleRate int

	// Channels is the number of channels in this chunk.
	Channels int
}

// Duration returns the chunk length in seconds.
func (c *Chunk) Duration() float64 {
	if c.SampleRate == 0 || c.Channels == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate*c.Channels)
}

// Bytes returns the chunk as little-endian PCM16 bytes.
func (c *Chunk) Bytes() []byte {
	buf := make([]byte, len(c.Samples)*2)
	for i, s := range c.Samples {
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(s >> 8)
	}
	return buf
}

// Sink plays rendered audio on an output device.
type Sink interface {
	// Start acquires the output device and begins playback. Platform
	// denial surfaces here; everything upstream stays no-op safe.
	Start(ctx context.Context) error

	// Write queues an audio chunk for playback.
	Write(ctx context.Context, chunk Chunk) error

	// Resume restarts playback if the platform suspended the output.
	// No-op when already playing.
	Resume() error

	// Stop halts playback. Safe to call multiple times; the sink can be
	// started again afterwards.
	Stop() error

	// Config returns the audio configuration.
	Config() Config

	// Name returns the backend name (e.g. "speaker", "mock").
	Name() string

	// Close releases all resources. After Close the sink cannot be
	// restarted.
	io.Closer
}
