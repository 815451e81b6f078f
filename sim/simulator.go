// Package sim drives a cache with a trace of memory accesses and collects
// the statistics of the run.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/trace"
)

// progressBatch is the number of records processed between progress
// updates.
const progressBatch = 4096

// ProgressSink receives the number of records processed.
type ProgressSink interface {
	IncrementFinished(amount uint64)
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithHooks registers hooks on the simulated cache.
func WithHooks(hooks ...cache.Hook) Option {
	return func(s *Simulator) {
		for _, h := range hooks {
			s.cache.AcceptHook(h)
		}
	}
}

// WithProgress reports progress to the given sink.
func WithProgress(sink ProgressSink) Option {
	return func(s *Simulator) {
		s.progress = sink
	}
}

// WithLogger sets the logger. The default logger discards debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) {
		s.logger = logger
	}
}

// WithName sets the name reported in the result.
func WithName(name string) Option {
	return func(s *Simulator) {
		s.result.Name = name
	}
}

// Simulator feeds accesses to a single cache, one at a time.
type Simulator struct {
	cache     *cache.Cache
	evictions *evictionCounter
	blocks    *blockTracker
	result    Result

	progress ProgressSink
	pending  int
	logger   *slog.Logger
	sometime rate.Sometimes
}

// New creates a Simulator for a cache with the given configuration.
func New(config cache.Config, opts ...Option) *Simulator {
	s := &Simulator{
		cache:     cache.New(config),
		evictions: &evictionCounter{},
		blocks:    newBlockTracker(config.BlockSize),
		logger:    slog.Default(),
		sometime:  rate.Sometimes{Interval: 2 * time.Second},
	}
	s.result.Config = config
	s.cache.AcceptHook(s.evictions)

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Cache returns the simulated cache.
func (s *Simulator) Cache() *cache.Cache {
	return s.cache
}

// Access decomposes the address and performs one access of the given kind.
func (s *Simulator) Access(kind cache.AccessKind, address uint64) cache.Result {
	tag, index := s.cache.Config().Decompose(address)
	firstTouch := s.blocks.touch(address)

	res := s.cache.Access(kind, tag, index)

	s.result.Accesses++
	stats := s.result.Kind(kind)
	stats.Accesses++

	if res == cache.Miss {
		s.result.Misses++
		stats.Misses++

		if firstTouch {
			s.result.CompulsoryMisses++
		}
	}

	return res
}

// Process handles one trace record. Records of an unknown kind are counted
// and otherwise skipped.
func (s *Simulator) Process(rec trace.Record) (cache.Result, bool) {
	if !rec.Known() {
		s.result.Accesses++
		s.result.Ignored++

		s.logger.Debug("ignoring record of unknown kind",
			"line", rec.Line, "kind", rec.RawKind)

		return cache.Miss, false
	}

	return s.Access(rec.Kind, rec.Address), true
}

// Run processes every record of the reader. It stops at the first malformed
// record and returns the statistics gathered so far together with the parse
// error.
func (s *Simulator) Run(ctx context.Context, r *trace.Reader) (Result, error) {
	start := time.Now()

	for r.Next() {
		if err := ctx.Err(); err != nil {
			s.finish(start)
			return s.Result(), err
		}

		s.Process(r.Record())
		s.tick()
	}

	s.finish(start)

	if err := r.Err(); err != nil {
		return s.Result(), fmt.Errorf("trace stopped early: %w", err)
	}

	return s.Result(), nil
}

// Result returns a copy of the statistics gathered so far.
func (s *Simulator) Result() Result {
	res := s.result
	res.Evictions = s.evictions.count
	res.UniqueBlocks = s.blocks.unique()

	return res
}

// Reset clears the cache and the statistics.
func (s *Simulator) Reset() {
	s.cache.Reset()
	s.blocks.reset()
	s.evictions.count = 0
	s.result = Result{Name: s.result.Name, Config: s.result.Config}
	s.pending = 0
}

func (s *Simulator) tick() {
	s.pending++
	if s.pending < progressBatch {
		return
	}

	s.flushProgress()

	s.sometime.Do(func() {
		s.logger.Info("simulating",
			"name", s.result.Name,
			"accesses", s.result.Accesses,
			"misses", s.result.Misses)
	})
}

func (s *Simulator) flushProgress() {
	if s.progress != nil && s.pending > 0 {
		s.progress.IncrementFinished(uint64(s.pending))
	}

	s.pending = 0
}

func (s *Simulator) finish(start time.Time) {
	s.flushProgress()
	s.result.WallTime += time.Since(start)
}
