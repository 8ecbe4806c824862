// Package engine evaluates the two-state reservoir recurrence for many
// independent parameter cases over one shared precipitation series.
package engine

// Engine distributes cases over an Executor.
type Engine struct {
	exec Executor
}

func New(exec Executor) *Engine {
	if exec == nil {
		exec = Sequential{}
	}
	return &Engine{exec: exec}
}

func (e *Engine) Executor() Executor { return e.exec }

// Compute returns |in| rows by |ps| columns. Each case is evaluated
// independently, so the result does not depend on the executor.
func (e *Engine) Compute(ps ParameterSet, in InputSeries) *OutputMatrix {
	out := NewOutputMatrix(len(in), len(ps))
	if len(ps) == 0 {
		return out
	}
	e.exec.Run(len(ps), func(start, end int) {
		for k := start; k < end; k++ {
			computeCase(ps[k], in, out.column(k))
		}
	})
	return out
}

// Compute is the sequential reference evaluation.
func Compute(ps ParameterSet, in InputSeries) *OutputMatrix {
	return New(Sequential{}).Compute(ps, in)
}

// computeCase must visit t in increasing order: the state carries forward.
func computeCase(p Params, in InputSeries, dst []float64) {
	state := 0.0
	decay := 1 - p.Gamma
	direct := 1 - p.Alpha - p.Beta
	for t, x := range in {
		next := decay*state + p.Alpha*x
		dst[t] = direct*x + p.Gamma*state
		state = next
	}
}
