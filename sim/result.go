package sim

import (
	"time"

	"github.com/sarchlab/cachesim/cache"
)

// KindStats counts the accesses and misses of one access kind.
type KindStats struct {
	Accesses uint64 `json:"accesses"`
	Misses   uint64 `json:"misses"`
}

// Result holds the statistics of a simulation run.
type Result struct {
	// Name identifies the run, typically the trace or configuration.
	Name string `json:"name,omitempty"`

	// Config is the cache geometry the run was simulated with.
	Config cache.Config `json:"config"`

	// Accesses counts every record read, including ignored ones.
	Accesses uint64 `json:"accesses"`

	// Misses counts demand misses over all kinds.
	Misses uint64 `json:"misses"`

	Reads       KindStats `json:"reads"`
	Writes      KindStats `json:"writes"`
	InstrFetchs KindStats `json:"instr_fetches"`

	// Ignored counts records whose kind is not a read, write or
	// instruction fetch. They count as accesses but never reach the cache.
	Ignored uint64 `json:"ignored"`

	// Evictions counts valid blocks that were overwritten.
	Evictions uint64 `json:"evictions"`

	// CompulsoryMisses counts misses on blocks never touched before.
	CompulsoryMisses uint64 `json:"compulsory_misses"`

	// UniqueBlocks is the number of distinct blocks the trace touched.
	UniqueBlocks uint64 `json:"unique_blocks"`

	// WallTime is the time taken to run the simulation.
	WallTime time.Duration `json:"wall_time_ns"`
}

// Hits returns the number of demand hits.
func (r Result) Hits() uint64 {
	return r.DemandAccesses() - r.Misses
}

// DemandAccesses returns the accesses that reached the cache, that is
// Accesses without the ignored records.
func (r Result) DemandAccesses() uint64 {
	return r.Accesses - r.Ignored
}

// MissRate returns misses over demand accesses, or 0 when there are none.
// MissRate and HitRate sum to 1 whenever the cache was accessed.
func (r Result) MissRate() float64 {
	if r.DemandAccesses() == 0 {
		return 0
	}

	return float64(r.Misses) / float64(r.DemandAccesses())
}

// HitRate returns hits over demand accesses, or 0 when there are none.
func (r Result) HitRate() float64 {
	if r.DemandAccesses() == 0 {
		return 0
	}

	return float64(r.Hits()) / float64(r.DemandAccesses())
}

// Kind returns the statistics of one access kind.
func (r *Result) Kind(kind cache.AccessKind) *KindStats {
	switch kind {
	case cache.Write:
		return &r.Writes
	case cache.InstrFetch:
		return &r.InstrFetchs
	default:
		return &r.Reads
	}
}
