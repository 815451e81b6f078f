package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/trace"
)

type genOptions struct {
	trace.GenOptions

	out  string
	list bool
}

func newGenCmd() *cobra.Command {
	opts := &genOptions{GenOptions: trace.DefaultGenOptions()}

	cmd := &cobra.Command{
		Use:   "gen <workload>",
		Short: "Generate a synthetic trace.",
		Long: "gen writes a synthetic trace in the format the simulator " +
			"reads. Available workloads: " +
			strings.Join(trace.WorkloadNames(), ", ") + ".",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.list {
				listWorkloads(cmd.OutOrStdout())
				return nil
			}

			if len(args) == 0 {
				return fmt.Errorf("a workload is required, one of: %s",
					strings.Join(trace.WorkloadNames(), ", "))
			}

			return runGen(args[0], opts, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.Count, "count", opts.Count, "number of records")
	flags.Uint64Var(&opts.Base, "base", opts.Base, "first address")
	flags.Uint64Var(&opts.Stride, "stride", opts.Stride, "bytes between consecutive accesses")
	flags.Uint64Var(&opts.Footprint, "footprint", opts.Footprint, "bytes of the region the workload covers")
	flags.Uint64Var(&opts.Seed, "seed", opts.Seed, "seed of the random workloads")
	flags.StringVarP(&opts.out, "out", "o", "",
		"output file, compressed by extension (.gz, .zst, .lz4); standard output when empty")
	flags.BoolVar(&opts.list, "list", false, "list the workloads")

	return cmd
}

func listWorkloads(w io.Writer) {
	for _, wl := range trace.GetWorkloads() {
		fmt.Fprintf(w, "%-12s %s\n", wl.Name, wl.Description)
	}
}

func runGen(name string, opts *genOptions, stdout io.Writer) error {
	records, err := trace.Generate(name, opts.GenOptions)
	if err != nil {
		return err
	}

	if opts.out == "" || opts.out == "-" {
		return trace.NewWriter(stdout).WriteAll(records)
	}

	wc, err := trace.Create(opts.out)
	if err != nil {
		return err
	}

	if err := trace.NewWriter(wc).WriteAll(records); err != nil {
		_ = wc.Close()
		return fmt.Errorf("writing trace: %w", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("closing trace: %w", err)
	}

	return nil
}
