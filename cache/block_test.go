package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/cache"
)

var _ = Describe("Block", func() {
	var b *cache.Block

	BeforeEach(func() {
		b = &cache.Block{}
	})

	It("should start invalid with zero tag and counter", func() {
		Expect(b.IsValid()).To(BeFalse())
		Expect(b.Tag()).To(Equal(uint64(0)))
		Expect(b.Counter()).To(Equal(uint64(0)))
	})

	It("should set valid bit and tag", func() {
		b.SetValid(true)
		b.SetTag(0xBEEF)

		Expect(b.IsValid()).To(BeTrue())
		Expect(b.Tag()).To(Equal(uint64(0xBEEF)))
	})

	It("should increment and reset the counter", func() {
		b.IncrementCounter()
		b.IncrementCounter()
		b.IncrementCounter()
		Expect(b.Counter()).To(Equal(uint64(3)))

		b.ResetCounter()
		Expect(b.Counter()).To(Equal(uint64(0)))
	})
})
