// Package streambench benchmarks multi-pattern streaming dictionary
// matchers.
//
// Given a dictionary of byte patterns and a set of byte streams, the
// harness compiles every selected matching engine over the dictionary's
// patterns tree, pumps each stream through it a byte at a time, and
// compares every per-position answer (the longest pattern ending at that
// byte) against the deterministic Aho-Corasick reference. Alongside
// accuracy it records Linux perf_event counter groups around the hot loop,
// each engine's static memory footprint, and an offline whole-buffer
// Aho-Corasick baseline for throughput contrast.
//
// The package wires the pieces together:
//
//	dict     -> patterns tree -> engines (bg, ac, ac-lowmem)
//	streams  -> bench.Runner  -> per-engine stats -> report
//
// Basic usage:
//
//	err := streambench.Run(streambench.Config{
//	    DictFiles:   []string{"patterns.dict"},
//	    StreamFiles: []string{"input.bin"},
//	    OutputPath:  "report.txt",
//	    Algorithms:  []string{"bg"},
//	})
package streambench

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/rs/zerolog"

	"github.com/coregx/streambench/ac"
	"github.com/coregx/streambench/bench"
	"github.com/coregx/streambench/dict"
	"github.com/coregx/streambench/matcher"
	"github.com/coregx/streambench/pattern"
)

// Config describes one harness run.
type Config struct {
	// DictFiles are the dictionary files, in file-index order.
	DictFiles []string

	// StreamFiles are the streams, processed sequentially.
	StreamFiles []string

	// OutputPath receives the report.
	OutputPath string

	// Algorithms names the engines under test (registry names). Empty
	// means "bg".
	Algorithms []string

	// Verbose raises the log level to debug.
	Verbose bool

	// Seed, when non-zero, makes fingerprint bases deterministic.
	Seed int64
}

// Run executes the harness: load, build, measure, report.
func Run(cfg Config) error {
	log := newLogger(cfg.Verbose)

	if len(cfg.Algorithms) == 0 {
		cfg.Algorithms = []string{"bg"}
	}
	opts := matcher.Options{Logger: log}
	if cfg.Seed != 0 {
		opts.Rand = rand.New(rand.NewSource(cfg.Seed))
	}

	instances := make([]matcher.Matcher, len(cfg.Algorithms))
	for i, name := range cfg.Algorithms {
		entry, ok := matcher.Lookup(name)
		if !ok {
			return fmt.Errorf("unknown algorithm %q (have %v)", name, matcher.Names())
		}
		instances[i] = entry.New(opts)
	}
	oracle := ac.NewDense()

	// Build the patterns tree once, fanning every distinct pattern out to
	// the oracle, every engine under test, and the batch baseline.
	builder := pattern.NewBuilder()
	loader := dict.NewLoader(cfg.DictFiles, log)
	if err := loader.Load(func(p dict.Pattern) error {
		builder.Add(p.Bytes, p.Meta)
		return nil
	}); err != nil {
		return err
	}
	if builder.Count() == 0 {
		return fmt.Errorf("dictionary is empty")
	}

	var batchPatterns [][]byte
	tree, err := builder.Build(func(pat []byte, id pattern.ID) error {
		if err := oracle.AddPattern(pat, id); err != nil {
			return err
		}
		for _, m := range instances {
			if err := m.AddPattern(pat, id); err != nil {
				return err
			}
		}
		cp := make([]byte, len(pat))
		copy(cp, pat)
		batchPatterns = append(batchPatterns, cp)
		return nil
	})
	if err != nil {
		return err
	}
	if err := oracle.Compile(); err != nil {
		return err
	}
	for _, m := range instances {
		if err := m.Compile(); err != nil {
			return err
		}
	}
	log.Info().Int("patterns", builder.Count()).Int("engines", len(instances)).Msg("compiled")

	streams := make([]bench.Stream, len(cfg.StreamFiles))
	for i, path := range cfg.StreamFiles {
		streams[i] = bench.FileStream(path)
	}

	runner := bench.NewRunner(tree, oracle, bench.Config{
		ChunkSize:      bench.DefaultChunkSize,
		EnableCounters: true,
		Logger:         log,
	})
	stats := make([]*bench.InstanceStats, len(instances))
	for i, m := range instances {
		s, err := runner.Measure(cfg.Algorithms[i], m, streams)
		if err != nil {
			return fmt.Errorf("measuring %s: %w", cfg.Algorithms[i], err)
		}
		stats[i] = s
		log.Info().Str("algo", s.Name).
			Uint64("success", s.Rate.Success).
			Uint64("partial", s.Rate.Partial).
			Uint64("false_pos", s.Rate.FalsePos).
			Uint64("false_neg", s.Rate.FalseNeg).
			Msg("measured")
	}

	var batch *bench.BatchStats
	if auto, err := bench.NewBatchAutomaton(batchPatterns); err != nil {
		log.Warn().Err(err).Msg("skipping batch baseline")
	} else if batch, err = bench.BatchScan(auto, streams, bench.DefaultChunkSize); err != nil {
		return fmt.Errorf("batch baseline: %w", err)
	}

	out, err := os.Create(cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("output %s: %w", cfg.OutputPath, err)
	}
	defer out.Close()
	return bench.WriteReport(out, stats, batch)
}

// newLogger builds the harness logger on stderr.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
