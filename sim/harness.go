package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/trace"
)

// Source opens a fresh stream of the trace for every job.
type Source func(ctx context.Context) (io.ReadCloser, error)

// Job is one cache configuration to simulate.
type Job struct {
	Name   string
	Config cache.Config
}

// Grid describes the cross product of cache parameters to sweep.
type Grid struct {
	Sizes           []uint64
	BlockSizes      []uint64
	Associativities []int
	Replacements    []cache.ReplacementPolicy
	WriteAllocs     []cache.WriteAllocPolicy
}

// Jobs expands the grid. Combinations that fail cache.Config.Validate are
// skipped.
func (g Grid) Jobs() []Job {
	var jobs []Job

	for _, size := range g.Sizes {
		for _, bs := range g.BlockSizes {
			for _, assoc := range g.Associativities {
				for _, repl := range g.Replacements {
					for _, walloc := range g.WriteAllocs {
						cfg := cache.Config{
							Size:          size,
							BlockSize:     bs,
							Associativity: assoc,
							Replacement:   repl,
							WriteAlloc:    walloc,
						}

						if cfg.Validate() != nil {
							continue
						}

						jobs = append(jobs, Job{Name: JobName(cfg), Config: cfg})
					}
				}
			}
		}
	}

	return jobs
}

// JobName returns a short name describing a configuration.
func JobName(cfg cache.Config) string {
	return fmt.Sprintf("%dB/%dB/%dway/%c/%c",
		cfg.Size, cfg.BlockSize, cfg.Associativity,
		cfg.Replacement.Flag(), cfg.WriteAlloc.Flag())
}

// HarnessConfig configures the sweep harness.
type HarnessConfig struct {
	// Parallel is the maximum number of jobs simulated at once. Zero uses
	// the number of CPUs.
	Parallel int

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	Logger *slog.Logger
}

// Harness runs many cache configurations over the same trace.
type Harness struct {
	config HarnessConfig
	jobs   []Job
}

// NewHarness creates a new sweep harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Parallel <= 0 {
		config.Parallel = runtime.NumCPU()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Harness{config: config}
}

// AddJob adds a job to the harness.
func (h *Harness) AddJob(j Job) {
	h.jobs = append(h.jobs, j)
}

// AddJobs adds multiple jobs to the harness.
func (h *Harness) AddJobs(jobs []Job) {
	h.jobs = append(h.jobs, jobs...)
}

// NumJobs returns the number of jobs added.
func (h *Harness) NumJobs() int {
	return len(h.jobs)
}

// RunAll simulates every job and returns the results in job order. Each job
// reads its own copy of the trace into its own cache. A malformed record ends
// a job early with the statistics gathered so far. Any other failure cancels
// the remaining jobs.
func (h *Harness) RunAll(ctx context.Context, source Source) ([]Result, error) {
	results := make([]Result, len(h.jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(h.config.Parallel)

	for i, job := range h.jobs {
		g.Go(func() error {
			res, err := h.runJob(ctx, source, job)
			if err != nil {
				return fmt.Errorf("job %s: %w", job.Name, err)
			}

			results[i] = res

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (h *Harness) runJob(ctx context.Context, source Source, job Job) (Result, error) {
	rc, err := source(ctx)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = rc.Close() }()

	s := New(job.Config,
		WithName(job.Name),
		WithLogger(h.config.Logger.With("job", job.Name)))

	res, err := s.Run(ctx, trace.NewReader(rc))
	if err != nil {
		if !errors.Is(err, trace.ErrMalformedRecord) {
			return Result{}, err
		}

		// Like a single run, keep the records read before the bad one.
		h.config.Logger.Warn("stopped reading trace", "job", job.Name, "error", err)
	}

	h.config.Logger.Debug("job finished",
		"job", job.Name, "misses", res.Misses, "wall_time", res.WallTime)

	return res, nil
}

// RecordsSource serves an in-memory trace.
func RecordsSource(records []trace.Record) Source {
	return func(context.Context) (io.ReadCloser, error) {
		pr, pw := io.Pipe()

		go func() {
			w := trace.NewWriter(pw)
			pw.CloseWithError(w.WriteAll(records))
		}()

		return pr, nil
	}
}
