package engine

import (
	"sort"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type span struct{ start, end int }

// record runs exec over n and returns the ranges it produced, sorted.
func record(exec Executor, n int) []span {
	var mu sync.Mutex
	var spans []span
	exec.Run(n, func(start, end int) {
		mu.Lock()
		spans = append(spans, span{start, end})
		mu.Unlock()
	})
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	return spans
}

var _ = Describe("Executors", func() {
	DescribeTable("cover [0, n) with disjoint ranges",
		func(exec Executor, n int) {
			spans := record(exec, n)

			next := 0
			for _, s := range spans {
				Expect(s.start).To(Equal(next))
				Expect(s.end).To(BeNumerically(">", s.start))
				next = s.end
			}
			Expect(next).To(Equal(n))
		},
		Entry("sequential", Sequential{}, 17),
		Entry("chunked even", Chunked{Workers: 4, MinChunk: 1}, 16),
		Entry("chunked uneven", Chunked{Workers: 4, MinChunk: 1}, 17),
		Entry("chunked more workers than items", Chunked{Workers: 64, MinChunk: 1}, 5),
		Entry("chunked below min chunk", Chunked{Workers: 4, MinChunk: 32}, 10),
		Entry("pool grain 1", Pool{MaxGoroutines: 3, Grain: 1}, 9),
		Entry("pool grain 4", Pool{MaxGoroutines: 3, Grain: 4}, 10),
	)

	DescribeTable("never call fn for an empty range",
		func(exec Executor) {
			Expect(record(exec, 0)).To(BeEmpty())
		},
		Entry("sequential", Sequential{}),
		Entry("chunked", Chunked{Workers: 4}),
		Entry("pool", Pool{MaxGoroutines: 4}),
	)

	It("falls back to a single range when the work is smaller than one chunk", func() {
		Expect(record(Chunked{Workers: 8, MinChunk: 100}, 50)).To(Equal([]span{{0, 50}}))
	})
})

var _ = Describe("Engine", func() {
	var (
		ps ParameterSet
		in InputSeries
	)

	BeforeEach(func() {
		ps, in = fixture(73, 150)
	})

	It("produces one row per step and one column per case", func() {
		out := New(Pool{MaxGoroutines: 4, Grain: 5}).Compute(ps, in)
		Expect(out.Rows()).To(Equal(len(in)))
		Expect(out.Cols()).To(Equal(len(ps)))
	})

	It("matches the sequential reference for every registered executor", func() {
		ref := Compute(ps, in)
		for _, name := range ExecutorNames() {
			for _, workers := range []int{0, 1, 2, 7} {
				exec, err := NewExecutor(name, workers)
				Expect(err).NotTo(HaveOccurred())
				Expect(New(exec).Compute(ps, in).Equal(ref)).To(BeTrue(), "executor %s with %d workers", name, workers)
			}
		}
	})

	It("defaults to sequential execution", func() {
		Expect(New(nil).Executor().Name()).To(Equal("sequential"))
	})
})
