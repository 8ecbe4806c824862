package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/hydrosim/internal/engine"
	"github.com/san-kum/hydrosim/internal/log"
)

const (
	metadataFile = "metadata.json"
	paramsFile   = "params.csv"
	inputFile    = "input.csv"
	outputFile   = "output.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string    `json:"id" msgpack:"id"`
	Name      string    `json:"name" msgpack:"name"`
	Timestamp time.Time `json:"timestamp" msgpack:"timestamp"`
	Seed      int64     `json:"seed" msgpack:"seed"`
	Executor  string    `json:"executor" msgpack:"executor"`
	Workers   int       `json:"workers" msgpack:"workers"`
	Steps     int       `json:"steps" msgpack:"steps"`
	Cases     int       `json:"cases" msgpack:"cases"`
	ElapsedMs float64   `json:"elapsed_ms" msgpack:"elapsed_ms"`
}

// Save writes a run under a fresh ID. Steps and Cases are taken from the data.
func (s *Store) Save(meta RunMetadata, ps engine.ParameterSet, in engine.InputSeries, out *engine.OutputMatrix) (string, error) {
	name := meta.Name
	if name == "" {
		name = "run"
	}
	meta.ID = fmt.Sprintf("%s_%s", name, strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	meta.Timestamp = time.Now()
	meta.Steps = len(in)
	meta.Cases = len(ps)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeRun(runDir, meta, ps, in, out); err != nil {
		if rmErr := os.RemoveAll(runDir); rmErr != nil {
			log.Warnw("failed to remove partial run", "dir", runDir, "error", rmErr)
		}
		return "", err
	}

	log.Debugw("saved run", "id", meta.ID, "dir", runDir, "steps", meta.Steps, "cases", meta.Cases)
	return meta.ID, nil
}

func writeRun(runDir string, meta RunMetadata, ps engine.ParameterSet, in engine.InputSeries, out *engine.OutputMatrix) error {
	if err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(runDir, paramsFile), func(w io.Writer) error {
		return WriteParamsCSV(w, ps)
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(runDir, inputFile), func(w io.Writer) error {
		return WriteInputCSV(w, in)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(runDir, outputFile), func(w io.Writer) error {
		return WriteOutputCSV(w, out)
	})
}

// writeFile returns the first error from fn or Close.
func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List returns every readable run, oldest first. Unreadable entries are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			log.Warnw("skipping unreadable run directory", "dir", entry.Name(), "error", err)
			continue
		}

		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadParameters(runID string) (engine.ParameterSet, error) {
	records, err := s.readCSV(runID, paramsFile)
	if err != nil {
		return nil, err
	}

	rows := make([][]float64, 0, len(records))
	for i, rec := range records {
		row, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", paramsFile, i+2, err)
		}
		rows = append(rows, row)
	}
	return engine.NewParameterSet(rows)
}

func (s *Store) LoadInput(runID string) (engine.InputSeries, error) {
	records, err := s.readCSV(runID, inputFile)
	if err != nil {
		return nil, err
	}

	in := make(engine.InputSeries, 0, len(records))
	for i, rec := range records {
		row, err := parseRow(rec)
		if err != nil || len(row) != 2 {
			return nil, fmt.Errorf("%s line %d: malformed row", inputFile, i+2)
		}
		in = append(in, row[1])
	}
	return in, nil
}

func (s *Store) LoadOutput(runID string) (*engine.OutputMatrix, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, outputFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadOutputCSV(f)
}

// readCSV returns the data records of a run file without its header.
func (s *Store) readCSV(runID, name string) ([][]string, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}

func parseRow(rec []string) ([]float64, error) {
	row := make([]float64, len(rec))
	for j, field := range rec {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		row[j] = v
	}
	return row, nil
}
