package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// errUsage reports that the usage text has been printed instead of running.
var errUsage = errors.New("usage")

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cachesim <trace> [options]",
		Short: "Trace-driven set-associative cache simulator.",
		Long: "cachesim replays a memory access trace against a " +
			"set-associative cache and reports the demand accesses and " +
			"misses. Options use the classic single-dash form, " +
			"for example -l1-usize 8192.",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLegacy(cmd.Context(), args,
				cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	rootCmd.AddCommand(
		newCompareCmd(),
		newSweepCmd(),
		newGenCmd(),
	)

	return rootCmd
}

// Execute runs the command line and exits the process.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := newRootCmd().ExecuteContext(ctx)

	stop()

	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func printUsage(w io.Writer, pname string) {
	fmt.Fprintf(w, "Usage: %s infile <options>\n", pname)
	fmt.Fprintf(w, "Options:\n")
	fmt.Fprintf(w, "<-l1-usize num_bytes>    : total size in bytes\n")
	fmt.Fprintf(w, "<-l1-ubsize num_bytes>   : block size in bytes\n")
	fmt.Fprintf(w, "<-l1-uassoc num_levels>  : associativity level\n")
	fmt.Fprintf(w, "<-l1-urepl type>         : replacement policy, 'l' - LRU, 'f' fifo\n")
	fmt.Fprintf(w, "<-l1-uwalloc type>       : write allocation policy, 'a' - always, 'n'-never\n")
	fmt.Fprintf(w, "<-config file>           : JSON configuration file\n")
	fmt.Fprintf(w, "<-dump>                  : print the cache contents after the run\n")
	fmt.Fprintf(w, "<-record name>           : record every access into name.sqlite3\n")
	fmt.Fprintf(w, "<-monitor>               : serve progress over HTTP\n")
	fmt.Fprintf(w, "<-monitor-port port>     : port of the monitoring server\n")
	fmt.Fprintf(w, "<-open>                  : open the monitoring page in a browser\n")
	fmt.Fprintf(w, "<-cpuprofile file>       : write a CPU profile\n")
	fmt.Fprintf(w, "<-memprofile file>       : write a heap profile\n")
	fmt.Fprintf(w, "<-json>                  : print the result as JSON\n")
	fmt.Fprintf(w, "<-v>                     : verbose output\n")
	fmt.Fprintf(w, "Commands: compare, sweep, gen (see %s <command> --help)\n", pname)
}
