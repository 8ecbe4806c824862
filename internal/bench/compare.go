// Package bench times executors against the sequential reference and checks
// that every one of them reproduces it bit for bit.
package bench

import (
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/hydrosim/internal/engine"
	"github.com/san-kum/hydrosim/internal/log"
)

var ErrMismatch = errors.New("bench: output differs from sequential reference")

type Entry struct {
	Executor string        `json:"executor"`
	Best     time.Duration `json:"best"`
	Mean     time.Duration `json:"mean"`
	Speedup  float64       `json:"speedup"`
	Match    bool          `json:"match"`
}

type Report struct {
	Steps     int           `json:"steps"`
	Cases     int           `json:"cases"`
	Repeats   int           `json:"repeats"`
	Reference time.Duration `json:"reference"`
	Entries   []Entry       `json:"entries"`
}

// Mismatches names the executors whose output diverged.
func (r *Report) Mismatches() []string {
	var names []string
	for _, e := range r.Entries {
		if !e.Match {
			names = append(names, e.Executor)
		}
	}
	return names
}

// Compare runs each executor repeats times. The report is returned even when
// an executor diverges; the error then wraps ErrMismatch.
func Compare(ps engine.ParameterSet, in engine.InputSeries, executors []engine.Executor, repeats int) (*Report, error) {
	if repeats < 1 {
		repeats = 1
	}

	report := &Report{
		Steps:   len(in),
		Cases:   len(ps),
		Repeats: repeats,
		Entries: make([]Entry, 0, len(executors)),
	}

	var ref *engine.OutputMatrix
	report.Reference, _, ref = timeRuns(engine.New(engine.Sequential{}), ps, in, repeats)

	for _, exec := range executors {
		best, mean, out := timeRuns(engine.New(exec), ps, in, repeats)

		entry := Entry{
			Executor: exec.Name(),
			Best:     best,
			Mean:     mean,
			Match:    out.Equal(ref),
		}
		if best > 0 {
			entry.Speedup = float64(report.Reference) / float64(best)
		}

		log.Debugw("benchmarked executor", "executor", entry.Executor, "best", best, "match", entry.Match)
		report.Entries = append(report.Entries, entry)
	}

	if bad := report.Mismatches(); len(bad) > 0 {
		return report, fmt.Errorf("%w: %v", ErrMismatch, bad)
	}
	return report, nil
}

// timeRuns returns the fastest and mean wall time, plus the last output.
func timeRuns(e *engine.Engine, ps engine.ParameterSet, in engine.InputSeries, repeats int) (time.Duration, time.Duration, *engine.OutputMatrix) {
	var out *engine.OutputMatrix
	var best, total time.Duration

	for i := 0; i < repeats; i++ {
		start := time.Now()
		out = e.Compute(ps, in)
		elapsed := time.Since(start)

		total += elapsed
		if i == 0 || elapsed < best {
			best = elapsed
		}
	}

	return best, total / time.Duration(repeats), out
}
