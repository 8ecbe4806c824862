package engine

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// Executor calls fn over disjoint half-open ranges that cover [0, n) and
// returns once every call has finished.
type Executor interface {
	Name() string
	Run(n int, fn func(start, end int))
}

type Sequential struct{}

func (Sequential) Name() string { return "sequential" }

func (Sequential) Run(n int, fn func(start, end int)) {
	if n > 0 {
		fn(0, n)
	}
}

// Chunked splits the range statically into one contiguous chunk per worker.
type Chunked struct {
	Workers  int
	MinChunk int
}

func (c Chunked) Name() string { return "chunked" }

func (c Chunked) Run(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	minChunk := c.MinChunk
	if minChunk < 1 {
		minChunk = 1
	}
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// Pool hands out Grain-sized ranges to a bounded goroutine pool, so uneven
// ranges balance across workers.
type Pool struct {
	MaxGoroutines int
	Grain         int
}

func (p Pool) Name() string { return "pool" }

func (p Pool) Run(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	grain := p.Grain
	if grain < 1 {
		grain = 1
	}
	maxG := p.MaxGoroutines
	if maxG <= 0 {
		maxG = runtime.NumCPU()
	}

	wp := pool.New().WithMaxGoroutines(maxG)
	for start := 0; start < n; start += grain {
		end := start + grain
		if end > n {
			end = n
		}
		s, e := start, end
		wp.Go(func() { fn(s, e) })
	}
	wp.Wait()
}

var executors = map[string]func(workers int) Executor{
	"sequential": func(int) Executor { return Sequential{} },
	"chunked":    func(w int) Executor { return Chunked{Workers: w, MinChunk: 1} },
	"pool":       func(w int) Executor { return Pool{MaxGoroutines: w, Grain: 16} },
}

// ExecutorNames lists registered executors in sorted order.
func ExecutorNames() []string {
	names := make([]string, 0, len(executors))
	for name := range executors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewExecutor looks up an executor by name. workers <= 0 selects runtime.NumCPU().
func NewExecutor(name string, workers int) (Executor, error) {
	fn, ok := executors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExecutor, name)
	}
	return fn(workers), nil
}
