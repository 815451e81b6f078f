// Package cache models a set-associative cache replaying a memory trace.
//
// A Cache is made of Lines, each holding an associative set of Blocks. Every
// block keeps an age counter that the cache uses to pick eviction victims.
// The cache is not safe for concurrent use; one instance serves one trace,
// one access at a time.
package cache

import (
	"errors"
	"fmt"
	"math/bits"
)

// MaxBlocks bounds the number of blocks a cache may hold.
const MaxBlocks = 1 << 24

// ErrInvalidGeometry is wrapped by every error Config.Validate returns.
var ErrInvalidGeometry = errors.New("invalid cache geometry")

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size uint64 `json:"size"`
	// BlockSize in bytes
	BlockSize uint64 `json:"block_size"`
	// Associativity is the number of blocks per line
	Associativity int `json:"associativity"`
	// Replacement selects how hits age the blocks
	Replacement ReplacementPolicy `json:"replacement"`
	// WriteAlloc selects whether write misses fill the cache
	WriteAlloc WriteAllocPolicy `json:"write_alloc"`
}

// NumLines returns the number of lines. Capacity that does not divide evenly
// is discarded. Geometries that Validate rejects yield 0.
func (c Config) NumLines() int {
	lines, err := c.lines()
	if err != nil {
		return 0
	}

	return int(lines)
}

// Validate checks that the geometry yields between one line and MaxBlocks
// blocks. New must only be called with a valid Config.
func (c Config) Validate() error {
	_, err := c.lines()
	return err
}

func (c Config) lines() (uint64, error) {
	if c.BlockSize == 0 {
		return 0, fmt.Errorf("%w: block size must be > 0", ErrInvalidGeometry)
	}
	if c.Associativity <= 0 {
		return 0, fmt.Errorf("%w: associativity must be > 0", ErrInvalidGeometry)
	}

	hi, lineBytes := bits.Mul64(uint64(c.Associativity), c.BlockSize)
	if hi != 0 {
		return 0, fmt.Errorf("%w: %d blocks of %d bytes overflow a line",
			ErrInvalidGeometry, c.Associativity, c.BlockSize)
	}

	lines := c.Size / lineBytes
	if lines == 0 {
		return 0, fmt.Errorf(
			"%w: size %d is smaller than one line of %d blocks of %d bytes",
			ErrInvalidGeometry, c.Size, c.Associativity, c.BlockSize)
	}

	// lines*associativity <= Size/BlockSize, so the product cannot wrap.
	if blocks := lines * uint64(c.Associativity); blocks > MaxBlocks {
		return 0, fmt.Errorf("%w: %d blocks exceed the limit of %d",
			ErrInvalidGeometry, blocks, MaxBlocks)
	}

	return lines, nil
}

// Decompose splits an address into its tag and set index.
func (c Config) Decompose(address uint64) (tag uint64, index int) {
	numLines := uint64(c.NumLines())

	tag = address / (numLines * c.BlockSize)
	blockAddr := address / c.BlockSize
	index = int(blockAddr % numLines)

	return tag, index
}

// Cache is an array of lines with a counter based victim selection.
type Cache struct {
	config Config
	lines  []Line
	hooks  []Hook
}

// New creates a cache with every block invalid. The configuration is
// trusted; a config with zero lines yields a cache that must not be
// accessed.
func New(config Config) *Cache {
	numLines := config.NumLines()

	lines := make([]Line, numLines)
	for i := range lines {
		lines[i].blocks = make([]Block, config.Associativity)
	}

	return &Cache{
		config: config,
		lines:  lines,
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// NumLines returns the number of lines.
func (c *Cache) NumLines() int {
	return len(c.lines)
}

// Line returns the line at index.
func (c *Cache) Line(index int) *Line {
	return &c.lines[index]
}

// Access dispatches to Read, Write or InstrFetch. Unknown kinds are served
// as reads.
func (c *Cache) Access(kind AccessKind, tag uint64, index int) Result {
	switch kind {
	case Write:
		return c.Write(tag, index)
	case InstrFetch:
		return c.InstrFetch(tag, index)
	default:
		return c.Read(tag, index)
	}
}

// Read performs a data read. A miss always fills the line.
func (c *Cache) Read(tag uint64, index int) Result {
	result := c.lookup(tag, index)
	if result == Miss {
		c.replace(tag, index)
	}

	c.notifyAccess(Read, tag, index, result)

	return result
}

// Write performs a data write. A miss fills the line only under
// WriteAllocAlways; otherwise the line is left untouched.
func (c *Cache) Write(tag uint64, index int) Result {
	result := c.lookup(tag, index)
	if result == Miss && c.config.WriteAlloc == WriteAllocAlways {
		c.replace(tag, index)
	}

	c.notifyAccess(Write, tag, index, result)

	return result
}

// InstrFetch performs an instruction fetch. It behaves exactly like Read.
func (c *Cache) InstrFetch(tag uint64, index int) Result {
	result := c.lookup(tag, index)
	if result == Miss {
		c.replace(tag, index)
	}

	c.notifyAccess(InstrFetch, tag, index, result)

	return result
}

// lookup serves the hit path. On a hit the touched block is refreshed under
// RecencyBased and every resident block of the line ages by one.
func (c *Cache) lookup(tag uint64, index int) Result {
	line := &c.lines[index]

	block, ok := line.FindTagMatch(tag)
	if !ok {
		return Miss
	}

	if c.config.Replacement == RecencyBased {
		block.ResetCounter()
	}

	line.IncrementAllValidCounters()

	return Hit
}

// replace installs tag in the line at index.
//
// A direct-mapped line is overwritten without touching the counter. Wider
// lines fill the first empty block if there is one; otherwise the block
// with the largest counter is evicted and reset. Either way the whole line
// then ages by one, so the installed block ends at counter 1.
func (c *Cache) replace(tag uint64, index int) {
	line := &c.lines[index]

	if c.config.Associativity == 1 {
		block := line.Block(0)
		if block.IsValid() {
			c.notifyEviction(index, 0, block, tag)
		}

		block.SetValid(true)
		block.SetTag(tag)

		return
	}

	if way, ok := line.emptyWay(); ok {
		block := line.Block(way)
		block.SetValid(true)
		block.SetTag(tag)
		line.IncrementAllValidCounters()

		return
	}

	way := line.victimWay()
	victim := line.Block(way)
	c.notifyEviction(index, way, victim, tag)

	victim.SetValid(true)
	victim.SetTag(tag)
	victim.ResetCounter()
	line.IncrementAllValidCounters()
}

// Reset invalidates every block.
func (c *Cache) Reset() {
	for i := range c.lines {
		c.lines[i].reset()
	}
}

func (c *Cache) notifyAccess(
	kind AccessKind,
	tag uint64,
	index int,
	result Result,
) {
	if len(c.hooks) == 0 {
		return
	}

	c.invokeHook(HookPosAccess, AccessInfo{
		Kind:   kind,
		Tag:    tag,
		Index:  index,
		Result: result,
	})
}

func (c *Cache) notifyEviction(index, way int, victim *Block, newTag uint64) {
	if len(c.hooks) == 0 {
		return
	}

	c.invokeHook(HookPosEvict, EvictionInfo{
		Index:   index,
		Way:     way,
		OldTag:  victim.Tag(),
		NewTag:  newTag,
		Counter: victim.Counter(),
	})
}
