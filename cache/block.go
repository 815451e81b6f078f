package cache

// A Block is the unit of cached state. It carries no data, only the
// bookkeeping needed to decide hits and victims.
type Block struct {
	valid   bool
	tag     uint64
	counter uint64
}

// SetValid sets the valid bit.
func (b *Block) SetValid(valid bool) {
	b.valid = valid
}

// SetTag sets the tag.
func (b *Block) SetTag(tag uint64) {
	b.tag = tag
}

// ResetCounter sets the age counter back to zero.
func (b *Block) ResetCounter() {
	b.counter = 0
}

// IncrementCounter ages the block by one access.
func (b *Block) IncrementCounter() {
	b.counter++
}

// IsValid reports whether the block holds live data.
func (b *Block) IsValid() bool {
	return b.valid
}

// Tag returns the tag.
func (b *Block) Tag() uint64 {
	return b.tag
}

// Counter returns the number of accesses to the line since the block was
// last reset.
func (b *Block) Counter() uint64 {
	return b.counter
}
