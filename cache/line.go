package cache

// A Line is one set of the cache. It holds exactly associativity blocks.
// Among its valid blocks, tags are unique.
type Line struct {
	blocks []Block
}

// NewLine creates a line with all blocks invalid.
func NewLine(associativity int) *Line {
	return &Line{
		blocks: make([]Block, associativity),
	}
}

// Associativity returns the number of blocks in the line.
func (l *Line) Associativity() int {
	return len(l.blocks)
}

// Block returns the block at the given way.
func (l *Line) Block(way int) *Block {
	return &l.blocks[way]
}

// FindTagMatch returns the valid block holding tag, scanning in way order.
func (l *Line) FindTagMatch(tag uint64) (*Block, bool) {
	way, ok := l.tagMatchWay(tag)
	if !ok {
		return nil, false
	}

	return &l.blocks[way], true
}

// HasTagMatch reports whether a valid block holds tag.
func (l *Line) HasTagMatch(tag uint64) bool {
	_, ok := l.tagMatchWay(tag)
	return ok
}

// FindEmptyBlock returns the first invalid block, scanning in way order.
func (l *Line) FindEmptyBlock() (*Block, bool) {
	way, ok := l.emptyWay()
	if !ok {
		return nil, false
	}

	return &l.blocks[way], true
}

// HasEmptyBlock reports whether any block is invalid.
func (l *Line) HasEmptyBlock() bool {
	_, ok := l.emptyWay()
	return ok
}

// IncrementAllValidCounters ages every resident block by one. Invalid
// blocks keep a zero counter.
func (l *Line) IncrementAllValidCounters() {
	for i := range l.blocks {
		if l.blocks[i].valid {
			l.blocks[i].IncrementCounter()
		}
	}
}

func (l *Line) tagMatchWay(tag uint64) (int, bool) {
	for i := range l.blocks {
		if l.blocks[i].valid && l.blocks[i].tag == tag {
			return i, true
		}
	}

	return 0, false
}

func (l *Line) emptyWay() (int, bool) {
	for i := range l.blocks {
		if !l.blocks[i].valid {
			return i, true
		}
	}

	return 0, false
}

// victimWay returns the way holding the largest counter. Ties go to the
// lowest way, since a later equal counter never displaces the leader.
func (l *Line) victimWay() int {
	victim := 0
	for i := 1; i < len(l.blocks); i++ {
		if l.blocks[i].counter > l.blocks[victim].counter {
			victim = i
		}
	}

	return victim
}

func (l *Line) reset() {
	for i := range l.blocks {
		l.blocks[i] = Block{}
	}
}
