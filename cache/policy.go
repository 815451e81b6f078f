package cache

// AccessKind identifies the kind of a memory access in a trace.
type AccessKind int

const (
	// Read is a data read.
	Read AccessKind = iota
	// Write is a data write.
	Write
	// InstrFetch is an instruction fetch.
	InstrFetch
)

func (k AccessKind) String() string {
	switch k {
	case Read:
		return "read"
	case Write:
		return "write"
	case InstrFetch:
		return "ifetch"
	default:
		return "unknown"
	}
}

// Result is the outcome of a single access.
type Result int

const (
	// Miss means no valid block in the addressed line held the tag.
	Miss Result = iota
	// Hit means a valid block in the addressed line held the tag.
	Hit
)

func (r Result) String() string {
	if r == Hit {
		return "hit"
	}

	return "miss"
}

// ReplacementPolicy controls how hits update the age counters.
//
// Neither policy changes the eviction scan, which always evicts the block
// with the largest counter. InsertionOrderBased therefore behaves as an
// approximate LRU in which hits do not refresh a block.
type ReplacementPolicy int

const (
	// InsertionOrderBased leaves counters alone on a hit. Selected by 'f'.
	InsertionOrderBased ReplacementPolicy = iota
	// RecencyBased resets the counter of the hit block. Selected by 'l'.
	RecencyBased
)

// ParseReplacementPolicy maps the command-line flag character to a policy.
// Only 'l' selects RecencyBased.
func ParseReplacementPolicy(c byte) ReplacementPolicy {
	if c == 'l' {
		return RecencyBased
	}

	return InsertionOrderBased
}

// Flag returns the command-line character of the policy.
func (p ReplacementPolicy) Flag() byte {
	if p == RecencyBased {
		return 'l'
	}

	return 'f'
}

func (p ReplacementPolicy) String() string {
	if p == RecencyBased {
		return "lru"
	}

	return "fifo"
}

// MarshalText encodes the policy by name.
func (p ReplacementPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// WriteAllocPolicy decides whether a write miss fills the cache.
type WriteAllocPolicy int

const (
	// WriteAllocAlways fills a block on a write miss. Selected by 'a'.
	WriteAllocAlways WriteAllocPolicy = iota
	// WriteAllocNever leaves the line untouched on a write miss.
	WriteAllocNever
)

// ParseWriteAllocPolicy maps the command-line flag character to a policy.
// Only 'a' selects WriteAllocAlways.
func ParseWriteAllocPolicy(c byte) WriteAllocPolicy {
	if c == 'a' {
		return WriteAllocAlways
	}

	return WriteAllocNever
}

// Flag returns the command-line character of the policy.
func (p WriteAllocPolicy) Flag() byte {
	if p == WriteAllocAlways {
		return 'a'
	}

	return 'n'
}

func (p WriteAllocPolicy) String() string {
	if p == WriteAllocAlways {
		return "always"
	}

	return "never"
}

// MarshalText encodes the policy by name.
func (p WriteAllocPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
