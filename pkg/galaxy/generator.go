// Package galaxy procedurally generates and animates the spiral-galaxy
// particle field.
package galaxy

import (
	"fmt"
	"math"
	"math/rand"
)

// Params describes the particle field. Generated fields are immutable for
// the lifetime of a session; only their transform animates.
type Params struct {
	Count           int     `toml:"count"`
	Radius          float64 `toml:"radius"`
	Branches        int     `toml:"branches"`
	Spin            float64 `toml:"spin"`
	Randomness      float64 `toml:"randomness"`
	RandomnessPower float64 `toml:"randomness_power"`
	InsideColor     Color   `toml:"inside_color"`
	OutsideColor    Color   `toml:"outside_color"`
}

// DefaultParams returns the tuned production field.
func DefaultParams() Params {
	return Params{
		Count:           15000,
		Radius:          5,
		Branches:        3,
		Spin:            1,
		Randomness:      0.2,
		RandomnessPower: 3,
		InsideColor:     Color{R: 1, G: 0x60 / 255.0, B: 0x30 / 255.0},    // #ff6030
		OutsideColor:    Color{R: 0x1b / 255.0, G: 0x39 / 255.0, B: 0x84 / 255.0}, // #1b3984
	}
}

// Validate checks that the parameters describe a generatable field.
func (p *Params) Validate() error {
	if p.Count <= 0 {
		return fmt.Errorf("galaxy: count must be positive, got %d", p.Count)
	}
	if p.Radius <= 0 {
		return fmt.Errorf("galaxy: radius must be positive, got %v", p.Radius)
	}
	if p.Branches <= 0 {
		return fmt.Errorf("galaxy: branches must be positive, got %d", p.Branches)
	}
	return nil
}

// Field is the generated point cloud: parallel xyz position and rgb color
// arrays of Count*3 float32 each, ready for a renderer to upload as-is.
type Field struct {
	Positions []float32
	Colors    []float32
	Count     int
}

// Generate builds a spiral-galaxy field from the parameters. The random
// source is injected so tests can fix the seed; production passes a
// time-seeded source.
//
// Particles sit on spiral arms: a branch angle from the particle index, a
// spin angle growing with radius, and a per-axis random offset drawn as
// sign * random^power * randomness * r. The power exponent concentrates
// offsets near zero, so higher RandomnessPower means tighter arms. The
// disk is flat: y carries only noise.
func Generate(p Params, rnd *rand.Rand) (*Field, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	f := &Field{
		Positions: make([]float32, p.Count*3),
		Colors:    make([]float32, p.Count*3),
		Count:     p.Count,
	}

	for i := 0; i < p.Count; i++ {
		r := rnd.Float64() * p.Radius
		spinAngle := r * p.Spin
		branchAngle := float64(i%p.Branches) / float64(p.Branches) * 2 * math.Pi

		offX := randomOffset(rnd, p) * r
		offY := randomOffset(rnd, p) * r
		offZ := randomOffset(rnd, p) * r

		j := i * 3
		f.Positions[j] = float32(math.Cos(branchAngle+spinAngle)*r + offX)
		f.Positions[j+1] = float32(offY)
		f.Positions[j+2] = float32(math.Sin(branchAngle+spinAngle)*r + offZ)

		c := p.InsideColor.Lerp(p.OutsideColor, r/p.Radius)
		f.Colors[j] = float32(c.R)
		f.Colors[j+1] = float32(c.G)
		f.Colors[j+2] = float32(c.B)
	}

	return f, nil
}

func randomOffset(rnd *rand.Rand, p Params) float64 {
	sign := 1.0
	if rnd.Float64() < 0.5 {
		sign = -1.0
	}
	return sign * math.Pow(rnd.Float64(), p.RandomnessPower) * p.Randomness
}
