package bench

import (
	"fmt"
	"io"
)

// WriteReport formats the measurement results. batch may be nil when the
// baseline scan was skipped.
func WriteReport(w io.Writer, stats []*InstanceStats, batch *BatchStats) error {
	for _, is := range stats {
		total := is.Rate.Success + is.Rate.Partial + is.Rate.FalsePos + is.Rate.FalseNeg
		if _, err := fmt.Fprintf(w, "algorithm %s:\n", is.Name); err != nil {
			return err
		}
		fmt.Fprintf(w, "  total memory: %d bytes\n", is.TotalMem)
		fmt.Fprintf(w, "  bytes compared: %d\n", total)
		fmt.Fprintf(w, "  success: %d  partial: %d  false positives: %d  false negatives: %d\n",
			is.Rate.Success, is.Rate.Partial, is.Rate.FalsePos, is.Rate.FalseNeg)
		if total > 0 {
			fmt.Fprintf(w, "  accuracy: %.6f\n", float64(is.Rate.Success)/float64(total))
		}
		if len(is.Counters) > 0 {
			fmt.Fprintf(w, "  counters:\n")
			for _, c := range is.Counters {
				fmt.Fprintf(w, "    %s: %d\n", c.Desc, c.Value)
			}
		}
	}
	if batch != nil {
		fmt.Fprintf(w, "batch baseline (whole-buffer aho-corasick):\n")
		fmt.Fprintf(w, "  matches: %d\n", batch.Matches)
		fmt.Fprintf(w, "  bytes: %d\n", batch.Bytes)
		fmt.Fprintf(w, "  throughput: %.1f MB/s\n", batch.Throughput()/1e6)
	}
	return nil
}
