package trace_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/trace"
)

var _ = Describe("Workloads", func() {
	var opts trace.GenOptions

	BeforeEach(func() {
		opts = trace.DefaultGenOptions()
		opts.Count = 64
	})

	It("should list the workloads sorted", func() {
		Expect(trace.WorkloadNames()).To(Equal([]string{
			"loop", "mixed", "random", "sequential", "strided",
		}))
	})

	It("should generate the requested number of records", func() {
		for _, name := range trace.WorkloadNames() {
			records, err := trace.Generate(name, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(opts.Count), name)
		}
	})

	It("should walk forward in the sequential workload", func() {
		records, _ := trace.Generate("sequential", opts)

		Expect(records[0].Address).To(Equal(opts.Base))
		Expect(records[1].Address).To(Equal(opts.Base + opts.Stride))
		Expect(records[1].Kind).To(Equal(cache.Read))
	})

	It("should cycle over the footprint in the loop workload", func() {
		opts.Footprint = 16
		opts.Stride = 4

		records, _ := trace.Generate("loop", opts)

		Expect(records[4].Address).To(Equal(records[0].Address))
	})

	It("should be deterministic for a seed", func() {
		a, _ := trace.Generate("random", opts)
		b, _ := trace.Generate("random", opts)

		Expect(a).To(Equal(b))
	})

	It("should keep random addresses inside the footprint", func() {
		records, _ := trace.Generate("random", opts)

		for _, r := range records {
			Expect(r.Address).To(BeNumerically(">=", opts.Base))
			Expect(r.Address).To(BeNumerically("<", opts.Base+opts.Footprint))
		}
	})

	It("should interleave instruction fetches in the mixed workload", func() {
		records, _ := trace.Generate("mixed", opts)

		Expect(records[0].Kind).To(Equal(cache.InstrFetch))
	})

	It("should reject unknown workloads", func() {
		_, err := trace.Generate("zipf", opts)
		Expect(err).To(HaveOccurred())
	})
})
