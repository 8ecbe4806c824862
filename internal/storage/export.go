package storage

import (
	"encoding/json"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/san-kum/hydrosim/internal/engine"
)

type ExportData struct {
	Run    RunMetadata         `json:"run" msgpack:"run"`
	Params engine.ParameterSet `json:"params" msgpack:"params"`
	Input  []float64           `json:"input" msgpack:"input"`
	Output [][]float64         `json:"output" msgpack:"output"`
}

// NewExportData lays the output out as one slice per case.
func NewExportData(meta RunMetadata, ps engine.ParameterSet, in engine.InputSeries, out *engine.OutputMatrix) ExportData {
	data := ExportData{
		Run:    meta,
		Params: ps,
		Input:  in,
		Output: make([][]float64, out.Cols()),
	}
	for k := range data.Output {
		data.Output[k] = out.Column(k)
	}
	return data
}

func (d ExportData) Matrix() (*engine.OutputMatrix, error) {
	out, err := engine.OutputFromColumns(d.Output)
	if err != nil {
		return nil, err
	}
	if len(d.Output) == 0 {
		out = engine.NewOutputMatrix(len(d.Input), 0)
	}
	return out, nil
}

// ExportJSON fails on NaN or Inf values, which JSON cannot represent; use
// ExportMsgpack for degenerate runs.
func ExportJSON(w io.Writer, data ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func ExportMsgpack(w io.Writer, data ExportData) error {
	return msgpack.NewEncoder(w).Encode(data)
}

func ImportMsgpack(r io.Reader) (ExportData, error) {
	var data ExportData
	err := msgpack.NewDecoder(r).Decode(&data)
	return data, err
}

func (s *Store) Export(runID string) (ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return ExportData{}, err
	}
	ps, err := s.LoadParameters(runID)
	if err != nil {
		return ExportData{}, err
	}
	in, err := s.LoadInput(runID)
	if err != nil {
		return ExportData{}, err
	}
	out, err := s.LoadOutput(runID)
	if err != nil {
		return ExportData{}, err
	}
	return NewExportData(*meta, ps, in, out), nil
}
