// Package gen draws reproducible synthetic precipitation and parameter cases.
package gen

import (
	"math/rand"

	"github.com/san-kum/hydrosim/internal/engine"
)

type Generator struct {
	seed int64
	rng  *rand.Rand
}

func New(seed int64) *Generator {
	return &Generator{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

func (g *Generator) Seed() int64 { return g.seed }

// Precipitation returns n values drawn uniformly from [0, scale).
func (g *Generator) Precipitation(n int, scale float64) engine.InputSeries {
	in := make(engine.InputSeries, n)
	for i := range in {
		in[i] = g.rng.Float64() * scale
	}
	return in
}

// Parameters returns n cases with alpha, beta and gamma uniform in [0, 1).
func (g *Generator) Parameters(n int) engine.ParameterSet {
	ps := make(engine.ParameterSet, n)
	for i := range ps {
		ps[i] = engine.Params{
			Alpha: g.rng.Float64(),
			Beta:  g.rng.Float64(),
			Gamma: g.rng.Float64(),
		}
	}
	return ps
}
