package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/cache"
)

var _ = Describe("Line", func() {
	var line *cache.Line

	fill := func(way int, tag uint64) {
		b := line.Block(way)
		b.SetValid(true)
		b.SetTag(tag)
	}

	BeforeEach(func() {
		line = cache.NewLine(4)
	})

	It("should hold associativity blocks", func() {
		Expect(line.Associativity()).To(Equal(4))
	})

	Describe("Tag matching", func() {
		It("should not match an empty line", func() {
			Expect(line.HasTagMatch(0)).To(BeFalse())

			_, ok := line.FindTagMatch(0)
			Expect(ok).To(BeFalse())
		})

		It("should find the valid block holding the tag", func() {
			fill(0, 0x10)
			fill(1, 0x20)

			block, ok := line.FindTagMatch(0x20)
			Expect(ok).To(BeTrue())
			Expect(block).To(BeIdenticalTo(line.Block(1)))
			Expect(line.HasTagMatch(0x20)).To(BeTrue())
		})

		It("should ignore invalid blocks with a matching tag", func() {
			line.Block(2).SetTag(0x30)

			Expect(line.HasTagMatch(0x30)).To(BeFalse())
		})
	})

	Describe("Empty blocks", func() {
		It("should return the first invalid block", func() {
			fill(0, 1)

			block, ok := line.FindEmptyBlock()
			Expect(ok).To(BeTrue())
			Expect(block).To(BeIdenticalTo(line.Block(1)))
		})

		It("should report no empty block when full", func() {
			for way := 0; way < 4; way++ {
				fill(way, uint64(way))
			}

			Expect(line.HasEmptyBlock()).To(BeFalse())

			_, ok := line.FindEmptyBlock()
			Expect(ok).To(BeFalse())
		})
	})

	It("should age only valid blocks", func() {
		fill(0, 1)
		fill(2, 3)

		line.IncrementAllValidCounters()
		line.IncrementAllValidCounters()

		Expect(line.Block(0).Counter()).To(Equal(uint64(2)))
		Expect(line.Block(1).Counter()).To(Equal(uint64(0)))
		Expect(line.Block(2).Counter()).To(Equal(uint64(2)))
		Expect(line.Block(3).Counter()).To(Equal(uint64(0)))
	})
})
