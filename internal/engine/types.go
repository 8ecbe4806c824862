package engine

import "math"

// Params holds the coefficients of one simulation case.
type Params struct {
	Alpha float64 `json:"alpha" msgpack:"alpha"`
	Beta  float64 `json:"beta" msgpack:"beta"`
	Gamma float64 `json:"gamma" msgpack:"gamma"`
}

// ParameterSet is the ordered list of cases; column k of the output belongs to case k.
type ParameterSet []Params

// NewParameterSet builds a ParameterSet from raw (alpha, beta, gamma) records.
func NewParameterSet(records [][]float64) (ParameterSet, error) {
	ps := make(ParameterSet, len(records))
	for i, r := range records {
		if len(r) != 3 {
			return nil, &RecordError{Index: i, Got: len(r), Wrapped: ErrMalformedRecord}
		}
		ps[i] = Params{Alpha: r[0], Beta: r[1], Gamma: r[2]}
	}
	return ps, nil
}

// InputSeries is the precipitation series shared read-only by every case.
type InputSeries []float64

func (s InputSeries) Clone() InputSeries {
	c := make(InputSeries, len(s))
	copy(c, s)
	return c
}

// OutputMatrix is indexed by (time step, case). Storage is column-major so
// each case writes one contiguous, disjoint block.
type OutputMatrix struct {
	rows int
	cols int
	data []float64
}

func NewOutputMatrix(rows, cols int) *OutputMatrix {
	return &OutputMatrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// OutputFromColumns builds a matrix from per-case columns of equal length.
func OutputFromColumns(cols [][]float64) (*OutputMatrix, error) {
	if len(cols) == 0 {
		return NewOutputMatrix(0, 0), nil
	}
	m := NewOutputMatrix(len(cols[0]), len(cols))
	for k, c := range cols {
		if len(c) != m.rows {
			return nil, ErrDimensionMismatch
		}
		copy(m.column(k), c)
	}
	return m, nil
}

func (m *OutputMatrix) Rows() int { return m.rows }
func (m *OutputMatrix) Cols() int { return m.cols }

func (m *OutputMatrix) At(t, k int) float64 {
	return m.data[k*m.rows+t]
}

func (m *OutputMatrix) Set(t, k int, v float64) {
	m.data[k*m.rows+t] = v
}

// Column returns a copy of case k's series.
func (m *OutputMatrix) Column(k int) []float64 {
	c := make([]float64, m.rows)
	copy(c, m.column(k))
	return c
}

// Row returns a copy of every case's value at time step t.
func (m *OutputMatrix) Row(t int) []float64 {
	r := make([]float64, m.cols)
	for k := range r {
		r[k] = m.At(t, k)
	}
	return r
}

func (m *OutputMatrix) column(k int) []float64 {
	return m.data[k*m.rows : (k+1)*m.rows]
}

// Equal reports bitwise equality, so NaNs with the same payload compare equal.
func (m *OutputMatrix) Equal(other *OutputMatrix) bool {
	if other == nil || m.rows != other.rows || m.cols != other.cols {
		return false
	}
	for i, v := range m.data {
		if math.Float64bits(v) != math.Float64bits(other.data[i]) {
			return false
		}
	}
	return true
}
