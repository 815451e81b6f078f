// Package reference provides a true-LRU cache model built on Akita cache
// components. It shares the geometry of a cache.Config so its outcomes can be
// compared access by access with the counter based model.
package reference

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/cachesim/cache"
)

// Statistics holds reference model statistics.
type Statistics struct {
	Accesses  uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache is an LRU cache that keeps tags in an Akita directory.
type Cache struct {
	config cache.Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	stats Statistics
}

// New creates a reference model with the same geometry as config.
func New(config cache.Config) *Cache {
	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			config.NumLines(),
			config.Associativity,
			int(config.BlockSize),
			akitacache.NewLRUVictimFinder(),
		),
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() cache.Config {
	return c.config
}

// Stats returns the model statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// Access dispatches on kind and reports whether the access hit.
func (c *Cache) Access(kind cache.AccessKind, addr uint64) bool {
	switch kind {
	case cache.Write:
		return c.Write(addr)
	case cache.InstrFetch:
		return c.InstrFetch(addr)
	default:
		return c.Read(addr)
	}
}

// Read performs a read and fills the block on a miss.
func (c *Cache) Read(addr uint64) bool {
	return c.access(addr, true)
}

// InstrFetch performs an instruction fetch. It behaves like Read.
func (c *Cache) InstrFetch(addr uint64) bool {
	return c.access(addr, true)
}

// Write performs a write. A miss fills the block only when the configuration
// allocates on writes.
func (c *Cache) Write(addr uint64) bool {
	return c.access(addr, c.config.WriteAlloc == cache.WriteAllocAlways)
}

func (c *Cache) access(addr uint64, allocate bool) bool {
	c.stats.Accesses++

	blockAddr := c.blockAddr(addr)

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)

		return true
	}

	c.stats.Misses++

	if allocate {
		c.fill(blockAddr)
	}

	return false
}

func (c *Cache) fill(blockAddr uint64) {
	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return
	}

	if victim.IsValid {
		c.stats.Evictions++
	}

	// Tag stores the block-aligned address.
	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false

	c.directory.Visit(victim)
}

// Contains reports whether the block holding addr is resident without
// updating the LRU order.
func (c *Cache) Contains(addr uint64) bool {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	return block != nil && block.IsValid
}

// Reset invalidates all blocks and clears the statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}

func (c *Cache) blockAddr(addr uint64) uint64 {
	return (addr / c.config.BlockSize) * c.config.BlockSize
}
