package viz

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/hydrosim/internal/engine"
)

func testViewer(cases int) Viewer {
	ps := make(engine.ParameterSet, cases)
	for k := range ps {
		ps[k] = engine.Params{Alpha: 0.1 * float64(k), Beta: 0.1, Gamma: 0.5}
	}
	in := engine.InputSeries{1, 0, 2, 1, 0, 3}
	return NewViewer("test run", ps, in, engine.Compute(ps, in))
}

func press(v Viewer, key tea.KeyMsg) (Viewer, tea.Cmd) {
	m, cmd := v.Update(key)
	return m.(Viewer), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewerNavigation(t *testing.T) {
	v := testViewer(3)

	v, _ = press(v, tea.KeyMsg{Type: tea.KeyLeft})
	if v.Current() != 0 {
		t.Errorf("left at first case should stay at 0, got %d", v.Current())
	}

	v, _ = press(v, tea.KeyMsg{Type: tea.KeyRight})
	v, _ = press(v, runes("l"))
	if v.Current() != 2 {
		t.Errorf("expected case 2, got %d", v.Current())
	}

	v, _ = press(v, tea.KeyMsg{Type: tea.KeyRight})
	if v.Current() != 2 {
		t.Errorf("right at last case should stay at 2, got %d", v.Current())
	}

	v, _ = press(v, runes("g"))
	if v.Current() != 0 {
		t.Errorf("g should jump to first case, got %d", v.Current())
	}

	v, _ = press(v, runes("G"))
	if v.Current() != 2 {
		t.Errorf("G should jump to last case, got %d", v.Current())
	}
}

func TestViewerQuit(t *testing.T) {
	for _, key := range []tea.KeyMsg{runes("q"), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		_, cmd := press(testViewer(2), key)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", key.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", key.String())
		}
	}
}

func TestViewerView(t *testing.T) {
	v := testViewer(2)
	view := v.View()

	if !strings.Contains(view, "test run") {
		t.Error("view should contain the title")
	}
	if !strings.Contains(view, "case 1/2") {
		t.Error("view should show the case position")
	}
	if !strings.Contains(view, "discharge q0") {
		t.Error("view should contain the plot caption")
	}
}

func TestViewerNoCases(t *testing.T) {
	v := testViewer(0)

	v, _ = press(v, runes("G"))
	if v.Current() != 0 {
		t.Errorf("expected 0, got %d", v.Current())
	}
	if !strings.Contains(v.View(), "no cases") {
		t.Error("expected no cases message")
	}
}

func TestPlotColumn(t *testing.T) {
	out := engine.Compute(engine.ParameterSet{{Alpha: 0.2, Beta: 0.1, Gamma: 0.3}}, engine.InputSeries{1, 2, 3, 2, 1})

	plot := PlotColumn(out, 0, "q0", 40, 5)
	if !strings.Contains(plot, "q0") {
		t.Error("plot should contain caption")
	}

	if got := PlotColumn(out, 3, "q3", 40, 5); !strings.Contains(got, "no case 3") {
		t.Errorf("expected missing case message, got %q", got)
	}

	empty := engine.Compute(engine.ParameterSet{{}}, nil)
	if got := PlotColumn(empty, 0, "q0", 40, 5); got != "no data to plot" {
		t.Errorf("expected no data message, got %q", got)
	}
}

func TestStatus(t *testing.T) {
	if !strings.Contains(Status(true), "identical") {
		t.Error("expected identical")
	}
	if !strings.Contains(Status(false), "MISMATCH") {
		t.Error("expected MISMATCH")
	}
}

func TestPlotColumnInfinite(t *testing.T) {
	ps := engine.ParameterSet{{Alpha: 0.5, Beta: 0, Gamma: 0.5}}
	out := engine.Compute(ps, engine.InputSeries{1, 2, 3, math.Inf(1)})

	plot := PlotColumn(out, 0, "q0", 40, 5)
	if !strings.Contains(plot, "q0") {
		t.Errorf("expected a plot with caption, got %q", plot)
	}

	spike := engine.Compute(ps, engine.InputSeries{1, math.Inf(1), 1})
	if got := PlotColumn(spike, 0, "q0", 40, 5); got == "" {
		t.Error("expected output for a column that turns infinite")
	}

	v := NewViewer("inf run", ps, engine.InputSeries{1, 2, 3, math.Inf(1)}, out)
	if !strings.Contains(v.View(), "discharge q0") {
		t.Error("view should render a plot for a partly infinite case")
	}
}

func TestPlotSeriesNoFiniteValues(t *testing.T) {
	got := PlotSeries([]float64{math.Inf(1), math.NaN(), math.Inf(-1)}, "q0", 40, 5)
	if got != "no finite data to plot" {
		t.Errorf("expected no finite data message, got %q", got)
	}
}
