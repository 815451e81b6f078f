package main

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/sim"
	"github.com/sarchlab/cachesim/trace"
)

type sweepOptions struct {
	sizes      []uint
	blockSizes []uint
	assocs     []int
	repl       []string
	walloc     []string
	parallel   int
	csv        bool
	json       bool
	verbose    bool
}

func newSweepCmd() *cobra.Command {
	opts := &sweepOptions{}

	cmd := &cobra.Command{
		Use:   "sweep <trace>",
		Short: "Simulate many cache configurations over one trace.",
		Long: "sweep runs every combination of the given sizes, block " +
			"sizes, associativities and policies over the trace in " +
			"parallel. Combinations without a single line are skipped.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd.Context(), args[0], opts,
				cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.UintSliceVar(&opts.sizes, "sizes", []uint{1024, 4096, 16384}, "cache sizes in bytes")
	flags.UintSliceVar(&opts.blockSizes, "block-sizes", []uint{16, 32, 64}, "block sizes in bytes")
	flags.IntSliceVar(&opts.assocs, "assocs", []int{1, 2, 4, 8}, "associativities")
	flags.StringSliceVar(&opts.repl, "repl", []string{"f", "l"}, "replacement policies, 'l' or 'f'")
	flags.StringSliceVar(&opts.walloc, "walloc", []string{"a"}, "write allocation policies, 'a' or 'n'")
	flags.IntVar(&opts.parallel, "parallel", 0, "maximum concurrent simulations (0 = number of CPUs)")
	flags.BoolVar(&opts.csv, "csv", false, "print results as CSV")
	flags.BoolVar(&opts.json, "json", false, "print results as JSON")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	return cmd
}

func (o *sweepOptions) grid() sim.Grid {
	g := sim.Grid{Associativities: o.assocs}

	for _, s := range o.sizes {
		g.Sizes = append(g.Sizes, uint64(s))
	}
	for _, b := range o.blockSizes {
		g.BlockSizes = append(g.BlockSizes, uint64(b))
	}
	for _, r := range o.repl {
		g.Replacements = append(g.Replacements, cache.ParseReplacementPolicy(flagChar(r)))
	}
	for _, w := range o.walloc {
		g.WriteAllocs = append(g.WriteAllocs, cache.ParseWriteAllocPolicy(flagChar(w)))
	}

	return g
}

func runSweep(
	ctx context.Context,
	path string,
	opts *sweepOptions,
	stdin io.Reader,
	stdout, stderr io.Writer,
) error {
	logger := sim.NewLogger(stderr, opts.verbose)

	source := func(ctx context.Context) (io.ReadCloser, error) {
		return trace.Open(ctx, path)
	}

	// Standard input can only be read once, so it is buffered for the jobs.
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("reading trace: %w", err)
		}

		source = func(context.Context) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
	}

	harness := sim.NewHarness(sim.HarnessConfig{
		Parallel: opts.parallel,
		Output:   stdout,
		Logger:   logger,
	})

	harness.AddJobs(opts.grid().Jobs())
	if harness.NumJobs() == 0 {
		return fmt.Errorf("no valid cache configuration in the sweep")
	}

	logger.Info("sweeping", "trace", path, "jobs", harness.NumJobs())

	results, err := harness.RunAll(ctx, source)
	if err != nil {
		return err
	}

	switch {
	case opts.json:
		return harness.PrintJSON(results)
	case opts.csv:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)
	}

	return nil
}

func flagChar(s string) byte {
	if s == "" {
		return 0
	}

	return s[0]
}
