package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/sim"
)

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <trace> [options]",
		Short: "Compare the counter model with a true LRU cache.",
		Long: "compare replays the trace against the counter based cache " +
			"and a true LRU reference cache of the same geometry and " +
			"reports where their hits and misses differ. It accepts the " +
			"same options as the default command.",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd.Context(), args,
				cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func runCompare(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	s, err := newSession("cachesim compare", args, stdout, stderr)
	if s == nil || err != nil {
		return err
	}

	defer func() {
		if cerr := s.close(); err == nil {
			err = cerr
		}
	}()

	cacheConfig := s.cfg.CacheConfig()

	if !s.cfg.JSON {
		sim.PrintBanner(stdout, s.cfg.TracePath, cacheConfig)
	}

	reader, closer, err := s.openTrace(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	cmp, err := sim.Compare(ctx, cacheConfig, reader, s.options()...)
	if err := s.checkRunError(err); err != nil {
		return err
	}

	if s.cfg.JSON {
		return sim.WriteJSON(stdout, cmp)
	}

	sim.PrintSummary(stdout, cmp.Model)
	sim.PrintComparison(stdout, cmp)

	return nil
}
