// Package optim calibrates reservoir coefficients against an observed
// discharge series.
package optim

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/hydrosim/internal/engine"
)

var (
	ErrLengthMismatch = errors.New("optim: observed series length differs from input")
	ErrNoFiniteScore  = errors.New("optim: no candidate has a finite score")
)

// GridSearch evaluates the cartesian product of candidate coefficients.
// Every grid point becomes one case, so a single Compute call scores them all.
type GridSearch struct {
	alphas []float64
	betas  []float64
	gammas []float64
}

func NewGridSearch(alphas, betas, gammas []float64) *GridSearch {
	return &GridSearch{alphas: alphas, betas: betas, gammas: gammas}
}

// NewUniformGrid spaces n points over [0, 1] for each coefficient.
func NewUniformGrid(n int) *GridSearch {
	values := make([]float64, n)
	if n == 1 {
		values[0] = 0.5
	} else if n > 1 {
		floats.Span(values, 0, 1)
	}
	return NewGridSearch(values, values, values)
}

func (g *GridSearch) Candidates() engine.ParameterSet {
	ps := make(engine.ParameterSet, 0, len(g.alphas)*len(g.betas)*len(g.gammas))
	for _, a := range g.alphas {
		for _, b := range g.betas {
			for _, c := range g.gammas {
				ps = append(ps, engine.Params{Alpha: a, Beta: b, Gamma: c})
			}
		}
	}
	return ps
}

type Result struct {
	Best      engine.Params
	RMSE      float64
	Evaluated int
}

// Search returns the candidate with the lowest RMSE against observed. NaN
// scores never win; ties keep the earliest candidate.
func (g *GridSearch) Search(e *engine.Engine, in engine.InputSeries, observed []float64) (*Result, error) {
	if len(observed) != len(in) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(observed), len(in))
	}

	candidates := g.Candidates()
	if len(candidates) == 0 {
		return nil, fmt.Errorf("optim: empty grid")
	}

	out := e.Compute(candidates, in)

	res := &Result{RMSE: math.Inf(1), Evaluated: len(candidates)}
	for k, p := range candidates {
		score := rmse(out.Column(k), observed)
		if score < res.RMSE {
			res.RMSE = score
			res.Best = p
		}
	}
	if math.IsInf(res.RMSE, 1) {
		return nil, ErrNoFiniteScore
	}
	return res, nil
}

func rmse(sim, obs []float64) float64 {
	if len(sim) == 0 {
		return 0
	}
	return floats.Distance(sim, obs, 2) / math.Sqrt(float64(len(sim)))
}
