// fieldgen generates a particle field with a fixed seed and dumps it as
// JSON, for renderer development without a running engine.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/stillpoint/nebula/pkg/galaxy"
)

type fieldDump struct {
	Seed      int64     `json:"seed"`
	Count     int       `json:"count"`
	Positions []float32 `json:"positions"`
	Colors    []float32 `json:"colors"`
}

func main() {
	out := flag.String("out", "-", "Output file (- for stdout)")
	seed := flag.Int64("seed", 42, "Random seed")
	count := flag.Int("count", 0, "Particle count (0 = default)")
	flag.Parse()

	p := galaxy.DefaultParams()
	if *count > 0 {
		p.Count = *count
	}

	field, err := galaxy.Generate(p, rand.New(rand.NewSource(*seed)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate: %v\n", err)
		os.Exit(1)
	}

	w := os.Stdout
	if *out != "-" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create %s: %v\n", *out, err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(fieldDump{
		Seed:      *seed,
		Count:     field.Count,
		Positions: field.Positions,
		Colors:    field.Colors,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}
}
