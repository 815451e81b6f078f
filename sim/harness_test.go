package sim_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/sim"
	"github.com/sarchlab/cachesim/trace"
)

var _ = Describe("Harness", func() {
	var (
		out     *bytes.Buffer
		harness *sim.Harness
		records []trace.Record
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		harness = sim.NewHarness(sim.HarnessConfig{
			Parallel: 2,
			Output:   out,
			Logger:   sim.NoopLogger(),
		})

		var err error
		records, err = trace.Generate("loop", trace.GenOptions{
			Count:     512,
			Base:      0x1000,
			Stride:    4,
			Footprint: 256,
			Seed:      1,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("should expand a grid and skip empty geometries", func() {
		grid := sim.Grid{
			Sizes:           []uint64{4, 64, 128},
			BlockSizes:      []uint64{4},
			Associativities: []int{1, 2},
			Replacements:    []cache.ReplacementPolicy{cache.RecencyBased},
			WriteAllocs:     []cache.WriteAllocPolicy{cache.WriteAllocAlways},
		}

		jobs := grid.Jobs()

		Expect(jobs).To(HaveLen(5))
		Expect(jobs[0].Name).To(Equal("4B/4B/1way/l/a"))
	})

	It("should run every job in order", func() {
		harness.AddJobs(sim.Grid{
			Sizes:           []uint64{64, 1024},
			BlockSizes:      []uint64{16},
			Associativities: []int{1, 4},
			Replacements:    []cache.ReplacementPolicy{cache.InsertionOrderBased},
			WriteAllocs:     []cache.WriteAllocPolicy{cache.WriteAllocAlways},
		}.Jobs())
		Expect(harness.NumJobs()).To(Equal(4))

		results, err := harness.RunAll(context.Background(), sim.RecordsSource(records))

		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))
		Expect(results[0].Name).To(Equal("64B/16B/1way/f/a"))
		Expect(results[3].Name).To(Equal("1024B/16B/4way/f/a"))

		for _, r := range results {
			Expect(r.Accesses).To(Equal(uint64(512)))
			Expect(r.UniqueBlocks).To(Equal(uint64(16)))
		}

		// The whole footprint fits in the largest cache.
		Expect(results[3].Misses).To(Equal(uint64(16)))
	})

	It("should skip geometries that overflow or exceed the block limit", func() {
		grid := sim.Grid{
			Sizes:           []uint64{1 << 40, 64},
			BlockSizes:      []uint64{1, 1 << 32},
			Associativities: []int{1 << 32},
			Replacements:    []cache.ReplacementPolicy{cache.RecencyBased},
			WriteAllocs:     []cache.WriteAllocPolicy{cache.WriteAllocAlways},
		}

		Expect(grid.Jobs()).To(BeEmpty())
	})

	It("should keep partial results when a trace has a malformed record", func() {
		harness.AddJob(sim.Job{
			Name:   "partial",
			Config: cache.Config{Size: 64, BlockSize: 16, Associativity: 1},
		})

		results, err := harness.RunAll(context.Background(),
			func(context.Context) (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader("0 0\n0 10\nbad\n0 0\n")), nil
			})

		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].Name).To(Equal("partial"))
		Expect(results[0].Accesses).To(Equal(uint64(2)))
		Expect(results[0].Misses).To(Equal(uint64(2)))
	})

	It("should fail when the source cannot be opened", func() {
		harness.AddJob(sim.Job{
			Name:   "only",
			Config: cache.Config{Size: 64, BlockSize: 16, Associativity: 1},
		})

		_, err := harness.RunAll(context.Background(),
			func(context.Context) (io.ReadCloser, error) {
				return nil, trace.ErrTraceUnavailable
			})

		Expect(errors.Is(err, trace.ErrTraceUnavailable)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("job only"))
	})

	It("should print results as text, CSV and JSON", func() {
		harness.AddJob(sim.Job{
			Name:   "small",
			Config: cache.Config{Size: 64, BlockSize: 16, Associativity: 1},
		})

		results, err := harness.RunAll(context.Background(), sim.RecordsSource(records))
		Expect(err).NotTo(HaveOccurred())

		harness.PrintResults(results)
		Expect(out.String()).To(ContainSubstring("Config: small"))

		out.Reset()
		harness.PrintCSV(results)
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		Expect(lines).To(HaveLen(2))
		Expect(lines[0]).To(HavePrefix("name,size,block_size"))
		Expect(lines[1]).To(HavePrefix("small,64,16,1,f,a,4,512,"))

		out.Reset()
		Expect(harness.PrintJSON(results)).To(Succeed())

		var decoded []map[string]any
		Expect(json.Unmarshal(out.Bytes(), &decoded)).To(Succeed())
		Expect(decoded).To(HaveLen(1))
		Expect(decoded[0]["name"]).To(Equal("small"))
		Expect(decoded[0]["config"]).To(HaveKeyWithValue("replacement", "fifo"))
	})
})

var _ = Describe("Report", func() {
	It("should print the classic banner and summary", func() {
		res := sim.Result{
			Config: cache.Config{
				Size:          1024,
				BlockSize:     32,
				Associativity: 2,
				Replacement:   cache.RecencyBased,
				WriteAlloc:    cache.WriteAllocNever,
			},
			Accesses: 10,
			Misses:   3,
		}

		out := &bytes.Buffer{}
		sim.PrintBanner(out, "trace.din", res.Config)
		sim.PrintSummary(out, res)

		Expect(out.String()).To(Equal(
			"Running with input: trace.din, l1-usize=1024, l1-ubsize=32, " +
				"l1-assoc=2, l1-repl=l, l1-uwalloc=n \n" +
				"Number of cache lines is: 16\n" +
				"Demand Accesses  10\n" +
				"Demand Misses 3\n"))
	})
})
