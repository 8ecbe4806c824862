package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/hydrosim/internal/engine"
)

// Shortest round-trip formatting keeps reloaded values bit-identical.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func WriteParamsCSV(w io.Writer, ps engine.ParameterSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"alpha", "beta", "gamma"}); err != nil {
		return err
	}
	for _, p := range ps {
		if err := cw.Write([]string{formatFloat(p.Alpha), formatFloat(p.Beta), formatFloat(p.Gamma)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteInputCSV(w io.Writer, in engine.InputSeries) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"t", "precip"}); err != nil {
		return err
	}
	for t, v := range in {
		if err := cw.Write([]string{strconv.Itoa(t), formatFloat(v)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteOutputCSV writes one row per time step: t, q0 .. qK-1.
func WriteOutputCSV(w io.Writer, out *engine.OutputMatrix) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, out.Cols()+1)
	header = append(header, "t")
	for k := 0; k < out.Cols(); k++ {
		header = append(header, fmt.Sprintf("q%d", k))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, out.Cols()+1)
	for t := 0; t < out.Rows(); t++ {
		row[0] = strconv.Itoa(t)
		for k := 0; k < out.Cols(); k++ {
			row[k+1] = formatFloat(out.At(t, k))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func ReadOutputCSV(r io.Reader) (*engine.OutputMatrix, error) {
	cr := csv.NewReader(r)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header", outputFile)
	}

	cols := len(records[0]) - 1
	out := engine.NewOutputMatrix(len(records)-1, cols)
	for t, rec := range records[1:] {
		for k := 0; k < cols; k++ {
			v, err := strconv.ParseFloat(rec[k+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", outputFile, t+2, err)
			}
			out.Set(t, k, v)
		}
	}
	return out, nil
}
