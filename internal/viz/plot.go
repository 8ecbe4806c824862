package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/hydrosim/internal/engine"
)

// PlotColumn draws case k of out as an ascii line chart.
func PlotColumn(out *engine.OutputMatrix, k int, caption string, width, height int) string {
	if k < 0 || k >= out.Cols() {
		return fmt.Sprintf("no case %d (run has %d)", k, out.Cols())
	}
	if out.Rows() == 0 {
		return "no data to plot"
	}
	return PlotSeries(out.Column(k), caption, width, height)
}

// PlotSeries draws data, leaving gaps where values are NaN or infinite.
func PlotSeries(data []float64, caption string, width, height int) string {
	if len(data) == 0 {
		return "no data to plot"
	}

	// asciigraph skips NaN but cannot scale an infinite range.
	finite := make([]float64, len(data))
	anyFinite := false
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			finite[i] = math.NaN()
			continue
		}
		finite[i] = v
		anyFinite = true
	}
	if !anyFinite {
		return "no finite data to plot"
	}

	return asciigraph.Plot(finite,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
