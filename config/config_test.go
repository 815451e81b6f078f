package config_test

import (
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/config"
)

var _ = Describe("Config", func() {
	It("should provide a valid default configuration", func() {
		c := config.DefaultConfig()

		Expect(c.Validate()).To(Succeed())
		Expect(c.CacheConfig().NumLines()).To(Equal(256))
		Expect(c.ReplacementFlag()).To(Equal(byte('f')))
		Expect(c.WriteAllocFlag()).To(Equal(byte('a')))
	})

	It("should convert flag characters into policies", func() {
		c := config.DefaultConfig()
		c.Replacement = "lru"
		c.WriteAlloc = "n"

		cc := c.CacheConfig()
		Expect(cc.Replacement).To(Equal(cache.RecencyBased))
		Expect(cc.WriteAlloc).To(Equal(cache.WriteAllocNever))
	})

	It("should treat empty flags as fifo and never-allocate", func() {
		c := config.DefaultConfig()
		c.Replacement = ""
		c.WriteAlloc = ""

		cc := c.CacheConfig()
		Expect(cc.Replacement).To(Equal(cache.InsertionOrderBased))
		Expect(cc.WriteAlloc).To(Equal(cache.WriteAllocNever))
	})

	DescribeTable("should reject geometries without a line",
		func(size, blockSize uint64, assoc int) {
			c := config.DefaultConfig()
			c.Size = size
			c.BlockSize = blockSize
			c.Associativity = assoc

			err := c.Validate()
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, config.ErrInvalidConfig)).To(BeTrue())
		},
		Entry("zero block size", uint64(1024), uint64(0), 1),
		Entry("zero associativity", uint64(1024), uint64(32), 0),
		Entry("negative associativity", uint64(1024), uint64(32), -2),
		Entry("size below one line", uint64(64), uint64(32), 4),
		Entry("line size overflowing 64 bits", uint64(1024), uint64(1<<32), 1<<32),
		Entry("line count beyond int", ^uint64(0), uint64(1), 1),
		Entry("too many blocks", uint64(1<<40), uint64(1), 1),
	)

	It("should reject an overflowing geometry given on the command line", func() {
		c := config.DefaultConfig()
		c.ParseArgs([]string{"t.din", "-l1-uassoc", "4294967296", "-l1-ubsize", "4294967296"})

		var err error
		Expect(func() { err = c.Validate() }).NotTo(Panic())
		Expect(errors.Is(err, config.ErrInvalidConfig)).To(BeTrue())
		Expect(errors.Is(err, cache.ErrInvalidGeometry)).To(BeTrue())
	})

	It("should accept the largest allowed cache", func() {
		c := config.DefaultConfig()
		c.Size = cache.MaxBlocks
		c.BlockSize = 1
		c.Associativity = 4

		Expect(c.Validate()).To(Succeed())
		Expect(c.CacheConfig().NumLines()).To(Equal(cache.MaxBlocks / 4))
	})

	It("should clone without sharing state", func() {
		c := config.DefaultConfig()
		clone := c.Clone()
		clone.Size = 1

		Expect(c.Size).To(Equal(uint64(8 * 1024)))
	})

	It("should round trip through a JSON file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "cache.json")

		c := config.DefaultConfig()
		c.Size = 16384
		c.Associativity = 4
		c.Replacement = "l"
		Expect(c.SaveConfig(path)).To(Succeed())

		loaded, err := config.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(c))
	})

	It("should keep defaults for fields missing from the file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "partial.json")
		Expect(os.WriteFile(path, []byte(`{"associativity": 2}`), 0o600)).To(Succeed())

		loaded, err := config.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Associativity).To(Equal(2))
		Expect(loaded.Size).To(Equal(uint64(8 * 1024)))
		Expect(loaded.WriteAlloc).To(Equal("a"))
	})

	It("should fail on a missing or malformed file", func() {
		dir := GinkgoT().TempDir()

		_, err := config.LoadConfig(filepath.Join(dir, "missing.json"))
		Expect(err).To(HaveOccurred())

		bad := filepath.Join(dir, "bad.json")
		Expect(os.WriteFile(bad, []byte("{"), 0o600)).To(Succeed())
		_, err = config.LoadConfig(bad)
		Expect(err).To(HaveOccurred())
	})
})
