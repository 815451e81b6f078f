package sim

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sarchlab/cachesim/cache"
)

// PrintBanner writes the lines announcing a run.
func PrintBanner(w io.Writer, input string, cfg cache.Config) {
	_, _ = fmt.Fprintf(w,
		"Running with input: %s, l1-usize=%d, l1-ubsize=%d, l1-assoc=%d, l1-repl=%c, l1-uwalloc=%c \n",
		input, cfg.Size, cfg.BlockSize, cfg.Associativity,
		cfg.Replacement.Flag(), cfg.WriteAlloc.Flag())
	_, _ = fmt.Fprintf(w, "Number of cache lines is: %d\n", cfg.NumLines())
}

// PrintSummary writes the demand access and miss counts.
func PrintSummary(w io.Writer, res Result) {
	_, _ = fmt.Fprintf(w, "Demand Accesses  %d\n", res.Accesses)
	_, _ = fmt.Fprintf(w, "Demand Misses %d\n", res.Misses)
}

// PrintDetails writes the per-kind breakdown of a run.
func PrintDetails(w io.Writer, res Result) {
	_, _ = fmt.Fprintf(w, "  Reads:          %d accesses, %d misses\n",
		res.Reads.Accesses, res.Reads.Misses)
	_, _ = fmt.Fprintf(w, "  Writes:         %d accesses, %d misses\n",
		res.Writes.Accesses, res.Writes.Misses)
	_, _ = fmt.Fprintf(w, "  Instr Fetches:  %d accesses, %d misses\n",
		res.InstrFetchs.Accesses, res.InstrFetchs.Misses)
	if res.Ignored > 0 {
		_, _ = fmt.Fprintf(w, "  Ignored:        %d\n", res.Ignored)
	}
	_, _ = fmt.Fprintf(w, "  Miss Rate:      %.4f\n", res.MissRate())
	_, _ = fmt.Fprintf(w, "  Compulsory:     %d (%d unique blocks)\n",
		res.CompulsoryMisses, res.UniqueBlocks)
	_, _ = fmt.Fprintf(w, "  Evictions:      %d\n", res.Evictions)
	_, _ = fmt.Fprintf(w, "  Wall Time:      %v\n", res.WallTime)
}

// PrintComparison writes the outcome of Compare.
func PrintComparison(w io.Writer, cmp Comparison) {
	_, _ = fmt.Fprintln(w, "=== Counter Model vs True LRU ===")
	_, _ = fmt.Fprintf(w, "  Model Misses:      %d\n", cmp.Model.Misses)
	_, _ = fmt.Fprintf(w, "  Reference Misses:  %d\n", cmp.Reference.Misses)
	_, _ = fmt.Fprintf(w, "  Model Evictions:   %d\n", cmp.Model.Evictions)
	_, _ = fmt.Fprintf(w, "  Ref Evictions:     %d\n", cmp.Reference.Evictions)
	_, _ = fmt.Fprintf(w, "  Disagreements:     %d\n", cmp.Disagreements)

	if r := cmp.FirstDisagreement; r != nil {
		_, _ = fmt.Fprintf(w, "  First Disagreement: line %d, kind %d, address %#x\n",
			r.Line, r.RawKind, r.Address)
	}
}

// PrintResults outputs sweep results in a human-readable format.
func (h *Harness) PrintResults(results []Result) {
	out := h.config.Output

	_, _ = fmt.Fprintln(out, "=== Cache Sweep Results ===")
	_, _ = fmt.Fprintln(out, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(out, "Config: %s\n", r.Name)
		_, _ = fmt.Fprintf(out, "  Lines:          %d\n", r.Config.NumLines())
		_, _ = fmt.Fprintf(out, "  Accesses:       %d\n", r.Accesses)
		_, _ = fmt.Fprintf(out, "  Misses:         %d\n", r.Misses)
		PrintDetails(out, r)
		_, _ = fmt.Fprintln(out, "")
	}
}

// PrintCSV outputs sweep results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []Result) {
	out := h.config.Output

	_, _ = fmt.Fprintln(out,
		"name,size,block_size,assoc,repl,walloc,lines,accesses,misses,miss_rate,compulsory,evictions,ignored")

	for _, r := range results {
		_, _ = fmt.Fprintf(out, "%s,%d,%d,%d,%c,%c,%d,%d,%d,%.6f,%d,%d,%d\n",
			r.Name,
			r.Config.Size,
			r.Config.BlockSize,
			r.Config.Associativity,
			r.Config.Replacement.Flag(),
			r.Config.WriteAlloc.Flag(),
			r.Config.NumLines(),
			r.Accesses,
			r.Misses,
			r.MissRate(),
			r.CompulsoryMisses,
			r.Evictions,
			r.Ignored,
		)
	}
}

// PrintJSON outputs sweep results as an indented JSON array.
func (h *Harness) PrintJSON(results []Result) error {
	return WriteJSON(h.config.Output, results)
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	return nil
}
