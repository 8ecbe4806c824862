package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/hydrosim/internal/engine"
	"github.com/san-kum/hydrosim/internal/metrics"
)

const (
	defaultPlotWidth  = 80
	defaultPlotHeight = 12
)

// Viewer pages through the cases of one run.
type Viewer struct {
	title     string
	params    engine.ParameterSet
	input     engine.InputSeries
	out       *engine.OutputMatrix
	summaries []metrics.Summary
	current   int
	width     int
	height    int
}

func NewViewer(title string, ps engine.ParameterSet, in engine.InputSeries, out *engine.OutputMatrix) Viewer {
	return Viewer{
		title:     title,
		params:    ps,
		input:     in,
		out:       out,
		summaries: metrics.SummarizeAll(out, in),
		width:     defaultPlotWidth,
		height:    defaultPlotHeight,
	}
}

func (v Viewer) Current() int { return v.current }

func (v Viewer) Init() tea.Cmd { return nil }

func (v Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)
	case tea.WindowSizeMsg:
		v.width = max(20, msg.Width-12)
		v.height = max(5, msg.Height-14)
	}
	return v, nil
}

func (v Viewer) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	last := v.out.Cols() - 1
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return v, tea.Quit
	case "right", "l", "n":
		if v.current < last {
			v.current++
		}
	case "left", "h", "p":
		if v.current > 0 {
			v.current--
		}
	case "g", "home":
		v.current = 0
	case "G", "end":
		if last >= 0 {
			v.current = last
		}
	}
	return v, nil
}

func (v Viewer) View() string {
	var b strings.Builder

	b.WriteString(Title.Render(v.title))
	b.WriteString("\n\n")

	if v.out.Cols() == 0 {
		b.WriteString("run has no cases\n")
		b.WriteString(KeyHint.Render("q quit"))
		return b.String()
	}

	p := v.params[v.current]
	s := v.summaries[v.current]
	header := fmt.Sprintf("case %d/%d  %s  %s  %s",
		v.current+1, v.out.Cols(),
		Metric("alpha", fmt.Sprintf("%.4f", p.Alpha)),
		Metric("beta", fmt.Sprintf("%.4f", p.Beta)),
		Metric("gamma", fmt.Sprintf("%.4f", p.Gamma)),
	)
	b.WriteString(header)
	b.WriteString("\n")

	plot := PlotColumn(v.out, v.current, fmt.Sprintf("discharge q%d", v.current), v.width, v.height)
	b.WriteString(Panel.Render(plot))
	b.WriteString("\n")

	b.WriteString(strings.Join([]string{
		Metric("mean", fmt.Sprintf("%.4f", s.Mean)),
		Metric("std", fmt.Sprintf("%.4f", s.StdDev)),
		Metric("max", fmt.Sprintf("%.4f", s.Max)),
		Metric("runoff ratio", fmt.Sprintf("%.4f", s.RunoffRatio)),
	}, "  "))
	b.WriteString("\n\n")
	b.WriteString(KeyHint.Render("←/→ case  g/G first/last  q quit"))

	return b.String()
}
