// Package metrics summarises simulated discharge columns.
package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/hydrosim/internal/engine"
)

type Summary struct {
	Mean        float64 `json:"mean"`
	StdDev      float64 `json:"std_dev"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Total       float64 `json:"total"`
	RunoffRatio float64 `json:"runoff_ratio"`
}

// Summarize describes one output column against the precipitation that drove it.
// RunoffRatio is Total over total precipitation, or 0 when no rain fell.
func Summarize(col []float64, input engine.InputSeries) Summary {
	if len(col) == 0 {
		return Summary{}
	}

	var s Summary
	if len(col) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(col, nil)
	} else {
		s.Mean = col[0]
	}
	s.Min = floats.Min(col)
	s.Max = floats.Max(col)
	s.Total = floats.Sum(col)

	if rain := floats.Sum(input); rain != 0 {
		s.RunoffRatio = s.Total / rain
	}
	return s
}

func SummarizeAll(out *engine.OutputMatrix, input engine.InputSeries) []Summary {
	summaries := make([]Summary, out.Cols())
	for k := range summaries {
		summaries[k] = Summarize(out.Column(k), input)
	}
	return summaries
}
