package engine

import (
	"math"
	"testing"
)

func TestComputeSingleStep(t *testing.T) {
	ps := ParameterSet{{Alpha: 1, Beta: 0, Gamma: 0}}
	out := Compute(ps, InputSeries{5.0})

	if out.Rows() != 1 || out.Cols() != 1 {
		t.Fatalf("expected 1x1 output, got %dx%d", out.Rows(), out.Cols())
	}
	if got := out.At(0, 0); got != 0.0 {
		t.Errorf("expected 0.0, got %f", got)
	}
}

func TestComputeCarriesState(t *testing.T) {
	ps := ParameterSet{{Alpha: 0, Beta: 0, Gamma: 0.5}}
	out := Compute(ps, InputSeries{2.0, 4.0})

	expected := []float64{2.0, 4.0}
	for i, want := range expected {
		if got := out.At(i, 0); got != want {
			t.Errorf("step %d: expected %f, got %f", i, want, got)
		}
	}
}

func TestComputeRecurrence(t *testing.T) {
	p := Params{Alpha: 0.4, Beta: 0.1, Gamma: 0.25}
	in := InputSeries{1, 0, 2, 0}
	out := Compute(ParameterSet{p}, in)

	// state: 0 -> 0.4 -> 0.3 -> 1.025 -> 0.76875
	expected := []float64{0.5, 0.1, 1.075, 0.25625}
	for i, want := range expected {
		if got := out.At(i, 0); math.Abs(got-want) > 1e-12 {
			t.Errorf("step %d: expected %.6f, got %.6f", i, want, got)
		}
	}
}

func TestComputeEmptyInput(t *testing.T) {
	ps := ParameterSet{{Alpha: 0.1}, {Alpha: 0.2}, {Alpha: 0.3}}
	out := Compute(ps, InputSeries{})

	if out.Rows() != 0 {
		t.Errorf("expected 0 rows, got %d", out.Rows())
	}
	if out.Cols() != 3 {
		t.Errorf("expected 3 cols, got %d", out.Cols())
	}
}

func TestComputeNoCases(t *testing.T) {
	out := Compute(nil, InputSeries{1, 2, 3})

	if out.Rows() != 3 || out.Cols() != 0 {
		t.Errorf("expected 3x0 output, got %dx%d", out.Rows(), out.Cols())
	}
}

func TestComputeDeterministic(t *testing.T) {
	ps, in := fixture(37, 200)

	a := Compute(ps, in)
	b := Compute(ps, in)
	if !a.Equal(b) {
		t.Error("repeated compute produced different output")
	}
}

func TestComputeColumnIndependence(t *testing.T) {
	ps, in := fixture(8, 120)
	base := Compute(ps, in)

	changed := make(ParameterSet, len(ps))
	copy(changed, ps)
	changed[3] = Params{Alpha: 0.9, Beta: 0.05, Gamma: 0.7}
	out := Compute(changed, in)

	for k := 0; k < len(ps); k++ {
		same := true
		for i := 0; i < len(in); i++ {
			if math.Float64bits(base.At(i, k)) != math.Float64bits(out.At(i, k)) {
				same = false
				break
			}
		}
		if k == 3 && same {
			t.Error("column 3 should change with its parameters")
		}
		if k != 3 && !same {
			t.Errorf("column %d changed when only case 3 was modified", k)
		}
	}
}

func TestComputeExecutorsMatch(t *testing.T) {
	ps, in := fixture(101, 64)
	ref := Compute(ps, in)

	tests := []struct {
		name string
		exec Executor
	}{
		{"chunked 1", Chunked{Workers: 1}},
		{"chunked 3", Chunked{Workers: 3, MinChunk: 1}},
		{"chunked many", Chunked{Workers: 500, MinChunk: 1}},
		{"chunked min chunk", Chunked{Workers: 4, MinChunk: 40}},
		{"pool grain 1", Pool{MaxGoroutines: 4, Grain: 1}},
		{"pool grain 7", Pool{MaxGoroutines: 2, Grain: 7}},
		{"pool default", Pool{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := New(tt.exec).Compute(ps, in)
			if !ref.Equal(out) {
				t.Errorf("%s output differs from sequential", tt.exec.Name())
			}
		})
	}
}

func TestComputePropagatesNaN(t *testing.T) {
	ps := ParameterSet{{Alpha: 0.5, Beta: 0, Gamma: 0.5}, {Alpha: 0.1, Beta: 0.1, Gamma: 0.1}}
	in := InputSeries{1, math.NaN(), 1}
	out := New(Chunked{Workers: 2}).Compute(ps, in)

	if !math.IsNaN(out.At(1, 0)) || !math.IsNaN(out.At(2, 0)) {
		t.Error("expected NaN to propagate through the state")
	}
	if !out.Equal(Compute(ps, in)) {
		t.Error("NaN output should still compare equal bitwise")
	}
}

func TestComputeDoesNotModifyInput(t *testing.T) {
	ps, in := fixture(5, 30)
	orig := in.Clone()

	New(Pool{MaxGoroutines: 3}).Compute(ps, in)

	for i := range in {
		if in[i] != orig[i] {
			t.Fatalf("input modified at %d", i)
		}
	}
}

// fixture returns deterministic cases and input without depending on gen.
func fixture(cases, steps int) (ParameterSet, InputSeries) {
	ps := make(ParameterSet, cases)
	for k := range ps {
		f := float64(k+1) / float64(cases+1)
		ps[k] = Params{Alpha: f, Beta: 0.5 * (1 - f), Gamma: math.Mod(f*7, 1)}
	}
	in := make(InputSeries, steps)
	for i := range in {
		in[i] = math.Abs(math.Sin(float64(i) * 0.37))
	}
	return ps, in
}
