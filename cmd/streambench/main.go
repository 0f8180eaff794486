// Command streambench benchmarks streaming dictionary-matching engines
// against an Aho-Corasick reference over dictionary and stream files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coregx/streambench"
	"github.com/coregx/streambench/matcher"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "streambench:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dicts   []string
		streams []string
		outputs []string
		algos   []string
		verbose bool
		seed    int64
	)
	cmd := &cobra.Command{
		Use:           "streambench -d dict [-d dict ...] -s stream [-s stream ...] -o report",
		Short:         "benchmark streaming dictionary matchers against an Aho-Corasick oracle",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(outputs) != 1 {
				return fmt.Errorf("exactly one -o output file required, got %d", len(outputs))
			}
			return streambench.Run(streambench.Config{
				DictFiles:   dicts,
				StreamFiles: streams,
				OutputPath:  outputs[0],
				Algorithms:  algos,
				Verbose:     verbose,
				Seed:        seed,
			})
		},
	}
	cmd.Flags().StringArrayVarP(&dicts, "dictionary", "d", nil, "dictionary file (repeatable)")
	cmd.Flags().StringArrayVarP(&streams, "stream", "s", nil, "stream file (repeatable)")
	cmd.Flags().StringArrayVarP(&outputs, "output", "o", nil, "report output file (exactly one)")
	cmd.Flags().StringArrayVarP(&algos, "algo", "a", nil,
		fmt.Sprintf("engine under test, one of %v (repeatable; default bg)", matcher.Names()))
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	cmd.Flags().Int64Var(&seed, "seed", 0, "deterministic fingerprint seed (0 = random)")
	for _, flag := range []string{"dictionary", "stream", "output"} {
		if err := cmd.MarkFlagRequired(flag); err != nil {
			panic(err)
		}
	}
	return cmd
}
